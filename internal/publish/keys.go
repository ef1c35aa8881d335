package publish

import "fmt"

// Chart names used in graph object keys.
const (
	ChartSleep         = "sleep_step"
	ChartHeartRate     = "activity_heart_rate"
	ChartStepsCalories = "activity_step_calories"
)

// GraphKey is graphs/<date>_<chart>.png.
func GraphKey(date, chart string) string {
	return fmt.Sprintf("graphs/%s_%s.png", date, chart)
}

// ReportKey is healthreport/<label>_<date>_<user>.pdf.
func ReportKey(label, date, user string) string {
	return fmt.Sprintf("healthreport/%s_%s_%s.pdf", label, date, user)
}

func FontKey(file string) string {
	return "fonts/" + file
}
