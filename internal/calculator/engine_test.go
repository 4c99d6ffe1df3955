package calculator

import (
	"errors"
	"math"
	"testing"

	"StockTrend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(symbol string, closes ...float64) []model.PriceRecord {
	start := model.MustParseDate("2025-01-01")
	out := make([]model.PriceRecord, len(closes))
	for i, c := range closes {
		out[i] = model.PriceRecord{
			Symbol: symbol,
			Date:   start.AddDays(i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 100,
		}
	}
	return out
}

func rampCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func constCloses(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCompute_WindowCount(t *testing.T) {
	in := series("ABC", rampCloses(25)...)
	seq, err := Compute(in, 20, DefaultZ)
	require.NoError(t, err)

	points := Collect(seq)
	require.Len(t, points, 6)
	assert.Equal(t, 10.5, points[0].SMA, "mean of closes 1..20")
	assert.InDelta(t, math.Sqrt(35), points[0].RollingStd, 1e-12)
	assert.Equal(t, in[19].Date, points[0].Date)
	assert.Equal(t, in[24].Date, points[5].Date)

	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Date.Before(points[i].Date))
	}
}

func TestCompute_BandOrdering(t *testing.T) {
	closes := []float64{
		101.2, 99.8, 103.4, 98.1, 97.6, 104.9, 110.2, 108.3, 99.9, 95.0,
		96.4, 101.1, 102.7, 100.0, 105.5, 107.2, 93.8, 92.1, 99.4, 101.8,
		103.3, 104.0, 98.7, 97.2, 106.6, 109.1, 111.4, 100.5, 99.9, 102.2,
	}
	seq, err := Compute(series("XYZ", closes...), DefaultWindow, DefaultZ)
	require.NoError(t, err)

	for p := range seq {
		assert.GreaterOrEqual(t, p.RollingStd, 0.0)
		assert.LessOrEqual(t, p.LowerBand, p.SMA, p.Date.String())
		assert.LessOrEqual(t, p.SMA, p.UpperBand, p.Date.String())
		assert.InDelta(t, p.UpperBand-p.SMA, p.SMA-p.LowerBand, 1e-9)
	}
}

func TestCompute_ConstantSeries(t *testing.T) {
	seq, err := Compute(series("ABC", constCloses(25, 100)...), 20, 1.96)
	require.NoError(t, err)

	points := Collect(seq)
	require.Len(t, points, 6)
	for _, p := range points {
		assert.Equal(t, 100.0, p.SMA)
		assert.Equal(t, 0.0, p.RollingStd)
		assert.Equal(t, 100.0, p.UpperBand)
		assert.Equal(t, 100.0, p.LowerBand)
		assert.InDelta(t, 100.0, p.EMA, 1e-9)
	}
}

func TestCompute_EMASeededWithFirstClose(t *testing.T) {
	seq, err := Compute(series("ABC", 1, 2, 3), 2, 2)
	require.NoError(t, err)

	points := Collect(seq)
	require.Len(t, points, 2)

	// alpha = 2/3: ema = 1, 5/3, 23/9
	assert.InDelta(t, 5.0/3.0, points[0].EMA, 1e-12)
	assert.InDelta(t, 23.0/9.0, points[1].EMA, 1e-12)
	assert.Equal(t, 1.5, points[0].SMA)
	assert.InDelta(t, math.Sqrt(0.5), points[0].RollingStd, 1e-12)
	assert.InDelta(t, 1.5+2*math.Sqrt(0.5), points[0].UpperBand, 1e-12)
}

func TestCompute_EMAMatchesCalculateEMA(t *testing.T) {
	closes := []float64{10, 12, 11, 15, 14, 13, 18, 17}
	seq, err := Compute(series("ABC", closes...), 4, DefaultZ)
	require.NoError(t, err)

	points := Collect(seq)
	last := points[len(points)-1]
	want, err := CalculateEMA(closes, 4)
	require.NoError(t, err)
	assert.Equal(t, want, last.EMA)

	sma, err := CalculateSMA(closes, 4)
	require.NoError(t, err)
	assert.Equal(t, sma, last.SMA)

	std, err := CalculateStdDev(closes, 4)
	require.NoError(t, err)
	assert.Equal(t, std, last.RollingStd)
}

func TestCompute_InsufficientHistory(t *testing.T) {
	seq, err := Compute(series("ABC", rampCloses(10)...), 20, DefaultZ)
	assert.Nil(t, seq)
	require.ErrorIs(t, err, ErrMinimumData)

	var mde *MinimumDataError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "ABC", mde.Symbol)
	assert.Equal(t, 10, mde.Have)
	assert.Equal(t, 20, mde.Need)
}

func TestCompute_EmptySeries(t *testing.T) {
	_, err := Compute(nil, 20, DefaultZ)
	assert.ErrorIs(t, err, ErrMinimumData)
}

func TestCompute_InvalidWindow(t *testing.T) {
	for _, w := range []int{-1, 0, 1} {
		_, err := Compute(series("ABC", rampCloses(5)...), w, DefaultZ)
		assert.ErrorIs(t, err, ErrInvalidWindow, "window %d", w)
	}
}

func TestCompute_MalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(s []model.PriceRecord)
		index int
	}{
		{"out of order", func(s []model.PriceRecord) { s[3], s[4] = s[4], s[3] }, 4},
		{"duplicate date", func(s []model.PriceRecord) { s[6].Date = s[5].Date }, 6},
		{"mixed symbols", func(s []model.PriceRecord) { s[2].Symbol = "XYZ" }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := series("ABC", rampCloses(25)...)
			tt.edit(in)
			_, err := Compute(in, 20, DefaultZ)
			require.ErrorIs(t, err, ErrMalformedInput)

			var mie *MalformedInputError
			require.True(t, errors.As(err, &mie))
			assert.Equal(t, tt.index, mie.Index)
		})
	}
}

func TestCompute_Restartable(t *testing.T) {
	in := series("ABC", rampCloses(30)...)
	seq, err := Compute(in, 5, DefaultZ)
	require.NoError(t, err)

	first := Collect(seq)
	in[10].Close = 1e6 // caller mutation must not leak into the sequence
	second := Collect(seq)
	assert.Equal(t, first, second)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
	assert.Len(t, Collect(seq), 26)
}

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{10, 11, 12, 13, 14, 15, 16}, 5)
	require.NoError(t, err)
	assert.Equal(t, 14.0, got)

	_, err = CalculateSMA([]float64{1, 2}, 5)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestBandPosition(t *testing.T) {
	p := model.IndicatorPoint{Close: 104, SMA: 100, UpperBand: 108, LowerBand: 92}
	assert.Equal(t, 0.75, BandPosition(p))

	p.Close = 120
	assert.Equal(t, 1.0, BandPosition(p))

	flat := model.IndicatorPoint{Close: 100, SMA: 100, UpperBand: 100, LowerBand: 100}
	assert.Equal(t, 0.5, BandPosition(flat))

	_, err := RangePosition(1, 0, 2)
	assert.Error(t, err)
}
