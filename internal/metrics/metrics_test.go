package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockTrend/internal/logging"
	"StockTrend/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMerge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveMerge(&model.MergeReport{Inserted: 3, SkippedDuplicate: 2, Rejected: 1}, nil)
	m.ObserveMerge(&model.MergeReport{Inserted: 1}, errors.New("store unavailable"))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.RecordsInserted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MergesAborted))
}

func TestObserveFetchAndCompute(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveFetch("ABC", nil)
	m.ObserveFetch("XYZ", errors.New("timeout"))
	m.ObserveFetch("DEF", nil)
	m.ObserveCompute("ABC", time.Millisecond, nil)
	m.ObserveCompute("XYZ", 0, errors.New("insufficient history"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolsAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SymbolsSkipped))
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestServer_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordsInserted.Add(7)

	srv := NewServer(":0", reg, fakePinger{}, logging.Discard())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "stocktrend_records_inserted_total 7")

	resp, err = http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthHandler_StoreDown(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(fakePinger{err: errors.New("database is locked")}, time.Now())(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store_ok":false`)
	assert.Contains(t, rec.Body.String(), "database is locked")
}
