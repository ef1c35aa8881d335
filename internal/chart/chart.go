// Package chart renders the report's PNG charts with go-chart.
//
// Every renderer sorts its input ascending by timestamp first and sets explicit
// axis ranges, so identical records always produce identical bytes and a single
// sample still yields a drawable chart.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoRecords is returned when there is nothing to plot.
var ErrNoRecords = errors.New("no records to chart")

// Renderer draws the three report charts. A nil Font falls back to go-chart's
// bundled Latin font, which cannot draw the Hangul labels.
//
// Tick labels show timestamps in Location, so records read in the same zone
// are labelled with their stored wall clock.
type Renderer struct {
	Font     *truetype.Font
	Location *time.Location
}

// NewRenderer parses fontTTF (may be empty) and renders tick labels in loc.
func NewRenderer(fontTTF []byte, loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	r := &Renderer{Location: loc}
	if len(fontTTF) > 0 {
		f, err := truetype.Parse(fontTTF)
		if err != nil {
			return nil, fmt.Errorf("failed to parse chart font: %w", err)
		}
		r.Font = f
	}
	return r, nil
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(hex)
}

func (r *Renderer) render(c gochart.Chart) ([]byte, error) {
	c.Font = r.Font
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", c.Title, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) timeFormatter(layout string) gochart.ValueFormatter {
	return func(v interface{}) string {
		switch t := v.(type) {
		case float64:
			return time.Unix(0, int64(t)).In(r.Location).Format(layout)
		case time.Time:
			return t.In(r.Location).Format(layout)
		default:
			return ""
		}
	}
}

func intFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func hoursFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return ""
}

// timeRange spans first..last plus pad on both sides, and never collapses to zero width.
func timeRange(first, last time.Time, pad time.Duration) *gochart.ContinuousRange {
	if pad <= 0 {
		pad = time.Duration(float64(last.Sub(first)) * 0.05)
	}
	if pad <= 0 {
		pad = 30 * time.Minute
	}
	return &gochart.ContinuousRange{
		Min: gochart.TimeToFloat64(first.Add(-pad)),
		Max: gochart.TimeToFloat64(last.Add(pad)),
	}
}

// valueRange returns [0, nice(max)] for non-negative data and pads otherwise.
func valueRange(values []float64) *gochart.ContinuousRange {
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo >= 0 {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: niceCeil(hi * 1.1)}
}

// niceCeil rounds v up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}
