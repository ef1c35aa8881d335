package chart

import (
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"health-report/internal/record"
)

// SleepBarWidth is the width of one stacked sleep bar on the time axis.
const SleepBarWidth = 100 * time.Minute

var sleepStages = []struct {
	name  string
	color string
	value func(record.SleepRecord) float64
}{
	{"깊은 수면", "A0C4FF", func(r record.SleepRecord) float64 { return r.Deep }},
	{"얕은 수면", "BDB2FF", func(r record.SleepRecord) float64 { return r.Light }},
	{"렘 수면", "FFC6FF", func(r record.SleepRecord) float64 { return r.REM }},
	{"깨어있는 시간", "FFD6A5", func(r record.SleepRecord) float64 { return r.Awake }},
}

// Sleep renders the stacked sleep-stage bar chart: deep, light, REM and awake
// stacked bottom to top, one bar per record.
func (r *Renderer) Sleep(records []record.SleepRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sleep chart: %w", ErrNoRecords)
	}
	sorted := record.SortedSleep(records)

	xs := make([]float64, len(sorted))
	base := make([]float64, len(sorted))
	totals := make([]float64, len(sorted))
	for i, rec := range sorted {
		xs[i] = gochart.TimeToFloat64(rec.Timestamp)
		totals[i] = rec.Total()
	}

	half := float64(SleepBarWidth) / 2
	series := make([]gochart.Series, 0, len(sleepStages))
	for _, stage := range sleepStages {
		layer := &stackedLayer{
			Name:      stage.name,
			XValues:   xs,
			Bottoms:   make([]float64, len(sorted)),
			Tops:      make([]float64, len(sorted)),
			HalfWidth: half,
			Style: gochart.Style{
				FillColor:   hexColor(stage.color),
				StrokeColor: hexColor(stage.color),
				StrokeWidth: 1,
			},
		}
		for i, rec := range sorted {
			layer.Bottoms[i] = base[i]
			layer.Tops[i] = base[i] + stage.value(rec)
			base[i] = layer.Tops[i]
		}
		series = append(series, layer)
	}

	first, last := sorted[0].Timestamp, sorted[len(sorted)-1].Timestamp
	c := gochart.Chart{
		Title:      "일주일간 수면 단계 분포",
		Width:      1400,
		Height:     700,
		Background: gochart.Style{Padding: gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           "시각",
			Range:          timeRange(first, last, SleepBarWidth),
			ValueFormatter: r.timeFormatter("01-02 15:04"),
		},
		YAxis: gochart.YAxis{
			Name:           "수면 시간 (시간)",
			Range:          valueRange(totals),
			ValueFormatter: hoursFormatter,
		},
		Series: series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return r.render(c)
}

// stackedLayer is one stage of a stacked bar chart. Each bar spans
// [Bottoms[i], Tops[i]] vertically and XValues[i]±HalfWidth horizontally.
type stackedLayer struct {
	Name      string
	Style     gochart.Style
	XValues   []float64
	Bottoms   []float64
	Tops      []float64
	HalfWidth float64
}

func (l *stackedLayer) GetName() string { return l.Name }

func (l *stackedLayer) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

func (l *stackedLayer) GetStyle() gochart.Style { return l.Style }

func (l *stackedLayer) Len() int { return len(l.XValues) }

func (l *stackedLayer) GetValues(index int) (float64, float64) {
	return l.XValues[index], l.Tops[index]
}

func (l *stackedLayer) Validate() error {
	if len(l.XValues) == 0 {
		return fmt.Errorf("stacked layer %q has no values", l.Name)
	}
	if len(l.Bottoms) != len(l.XValues) || len(l.Tops) != len(l.XValues) {
		return fmt.Errorf("stacked layer %q has mismatched value lengths", l.Name)
	}
	return nil
}

func (l *stackedLayer) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	style := l.Style.InheritFrom(defaults)
	for i, x := range l.XValues {
		if l.Tops[i] <= l.Bottoms[i] {
			continue
		}
		box := gochart.Box{
			Left:   canvasBox.Left + xrange.Translate(x-l.HalfWidth),
			Right:  canvasBox.Left + xrange.Translate(x+l.HalfWidth),
			Top:    canvasBox.Bottom - yrange.Translate(l.Tops[i]),
			Bottom: canvasBox.Bottom - yrange.Translate(l.Bottoms[i]),
		}
		gochart.Draw.Box(r, box, style)
	}
}
