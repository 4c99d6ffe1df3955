package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"StockTrend/internal/model"
)

// JSONSink writes one <symbol>_indicators.json file per symbol into Dir.
type JSONSink struct {
	Dir string
	Now func() time.Time
}

func NewJSONSink(dir string) *JSONSink {
	return &JSONSink{Dir: dir, Now: time.Now}
}

func (s *JSONSink) Name() string { return "json" }

// Path returns the file the series of symbol is written to.
func (s *JSONSink) Path(symbol string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, symbol)
	return filepath.Join(s.Dir, safe+"_indicators.json")
}

// Publish replaces the symbol's file through a rename so readers never see a partial write.
func (s *JSONSink) Publish(_ context.Context, symbol string, points []model.IndicatorPoint) error {
	data, err := encodeSeries(symbol, points, s.Now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", symbol, err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, ".indicators-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(symbol)); err != nil {
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}
