package analyzer

import (
	"strconv"
	"strings"

	"health-report/internal/record"
)

const timestampLayout = "2006-01-02 15:04:05"

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatActivity renders activity rows as the prompt block sent to the model.
// Rows are listed oldest first.
func FormatActivity(records []record.ActivityRecord) string {
	var b strings.Builder
	b.WriteString("[활동 데이터]")
	for _, r := range record.SortedActivity(records) {
		b.WriteString("\n")
		b.WriteString(r.Timestamp.Format(timestampLayout))
		b.WriteString(", 심박수: ")
		b.WriteString(formatNumber(r.HeartRate))
		b.WriteString(", 걸음: ")
		b.WriteString(strconv.FormatInt(r.Steps, 10))
		b.WriteString(", 칼로리: ")
		b.WriteString(formatNumber(r.Calories))
	}
	return b.String()
}

// FormatSleep renders sleep rows as the prompt block sent to the model.
func FormatSleep(records []record.SleepRecord) string {
	var b strings.Builder
	b.WriteString("[수면 데이터]")
	for _, r := range record.SortedSleep(records) {
		b.WriteString("\n")
		b.WriteString(r.Timestamp.Format(timestampLayout))
		b.WriteString(", 깊은 수면: ")
		b.WriteString(formatNumber(r.Deep))
		b.WriteString(", 얕은 수면: ")
		b.WriteString(formatNumber(r.Light))
		b.WriteString(", 렘 수면: ")
		b.WriteString(formatNumber(r.REM))
		b.WriteString(", 깨어있음: ")
		b.WriteString(formatNumber(r.Awake))
	}
	return b.String()
}
