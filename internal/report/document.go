// Package report lays out the health report and renders it to PDF.
package report

import "fmt"

// RGB is a text or line colour, 0-255 per channel.
type RGB struct {
	R, G, B int
}

var (
	TitleColor    = RGB{33, 33, 33}
	ActivityColor = RGB{0, 102, 204}
	SleepColor    = RGB{102, 0, 153}
)

// Section is a coloured heading, a divider, a prose body and the images below it.
type Section struct {
	Heading string
	Color   RGB
	Body    string
	Images  [][]byte // PNG
}

type Document struct {
	Title    string
	Sections []Section
}

// HealthReport builds the fixed two-section report. date is the run's YYYY-MM-DD stamp.
func HealthReport(user, date, activityText, sleepText string, heartRate, stepsCalories, sleep []byte) Document {
	return Document{
		Title: fmt.Sprintf("%s님의 건강 리포트 - %s", user, date),
		Sections: []Section{
			{
				Heading: "활동 분석",
				Color:   ActivityColor,
				Body:    activityText,
				Images:  [][]byte{heartRate, stepsCalories},
			},
			{
				Heading: "수면 분석",
				Color:   SleepColor,
				Body:    sleepText,
				Images:  [][]byte{sleep},
			},
		},
	}
}
