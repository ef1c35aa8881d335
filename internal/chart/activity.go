package chart

import (
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"health-report/internal/record"
)

const (
	heartRateColor = "0ABAB5"
	stepsColor     = "FFB3A7"
	caloriesColor  = "A5C8FF"
)

func activityAxes(sorted []record.ActivityRecord) ([]time.Time, *gochart.ContinuousRange) {
	xs := make([]time.Time, len(sorted))
	for i, rec := range sorted {
		xs[i] = rec.Timestamp
	}
	return xs, timeRange(xs[0], xs[len(xs)-1], 0)
}

// HeartRate renders the heart-rate line chart with a marker at every sample.
func (r *Renderer) HeartRate(records []record.ActivityRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("heart rate chart: %w", ErrNoRecords)
	}
	sorted := record.SortedActivity(records)
	xs, xr := activityAxes(sorted)

	ys := make([]float64, len(sorted))
	for i, rec := range sorted {
		ys[i] = rec.HeartRate
	}

	c := gochart.Chart{
		Title:      "일일 평균 심박수 변화",
		Width:      1000,
		Height:     500,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           "시간",
			Range:          xr,
			ValueFormatter: r.timeFormatter("01-02 15:04"),
		},
		YAxis: gochart.YAxis{
			Name:           "평균 심박수 (bpm)",
			Range:          valueRange(ys),
			ValueFormatter: intFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "심박수",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: hexColor(heartRateColor),
					StrokeWidth: 2,
					DotColor:    hexColor(heartRateColor),
					DotWidth:    4,
				},
			},
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return r.render(c)
}

// StepsCalories renders steps (dashed, primary axis) and calories (secondary
// axis) over a shared time axis.
func (r *Renderer) StepsCalories(records []record.ActivityRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("steps/calories chart: %w", ErrNoRecords)
	}
	sorted := record.SortedActivity(records)
	xs, xr := activityAxes(sorted)

	steps := make([]float64, len(sorted))
	calories := make([]float64, len(sorted))
	for i, rec := range sorted {
		steps[i] = float64(rec.Steps)
		calories[i] = rec.Calories
	}

	c := gochart.Chart{
		Title:      "걸음 수 및 칼로리 소모",
		Width:      1000,
		Height:     500,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           "시간",
			Range:          xr,
			ValueFormatter: r.timeFormatter("01-02 15:04"),
		},
		YAxis: gochart.YAxis{
			Name:           "걸음 수",
			Range:          valueRange(steps),
			ValueFormatter: intFormatter,
		},
		YAxisSecondary: gochart.YAxis{
			Name:           "칼로리 소모",
			Range:          valueRange(calories),
			ValueFormatter: intFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "걸음 수",
				XValues: xs,
				YValues: steps,
				Style: gochart.Style{
					StrokeColor:     hexColor(stepsColor),
					StrokeWidth:     2,
					StrokeDashArray: []float64{6, 4},
					DotColor:        hexColor(stepsColor),
					DotWidth:        3,
				},
			},
			gochart.TimeSeries{
				Name:    "칼로리 소모",
				YAxis:   gochart.YAxisSecondary,
				XValues: xs,
				YValues: calories,
				Style: gochart.Style{
					StrokeColor: hexColor(caloriesColor),
					StrokeWidth: 2,
					DotColor:    hexColor(caloriesColor),
					DotWidth:    3,
				},
			},
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	return r.render(c)
}
