// Package record holds the typed fitness rows shared by every stage of a report run.
package record

import (
	"sort"
	"time"
)

// SleepRecord is one sleep-tracking sample. Stage values are hours; stacked they
// cover the tracked duration for Timestamp.
type SleepRecord struct {
	Timestamp time.Time
	Deep      float64
	Light     float64
	REM       float64
	Awake     float64
}

// Total returns deep+light+REM+awake.
func (r SleepRecord) Total() float64 {
	return r.Deep + r.Light + r.REM + r.Awake
}

// ActivityRecord is one activity sample.
type ActivityRecord struct {
	Timestamp time.Time
	HeartRate float64
	Steps     int64
	Calories  float64
}

// SortSleep sorts in place, ascending by timestamp. Equal timestamps keep their order.
func SortSleep(records []SleepRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// SortActivity sorts in place, ascending by timestamp. Equal timestamps keep their order.
func SortActivity(records []ActivityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
}

// SortedSleep returns an ascending copy and leaves the input untouched.
func SortedSleep(records []SleepRecord) []SleepRecord {
	out := make([]SleepRecord, len(records))
	copy(out, records)
	SortSleep(out)
	return out
}

// SortedActivity returns an ascending copy and leaves the input untouched.
func SortedActivity(records []ActivityRecord) []ActivityRecord {
	out := make([]ActivityRecord, len(records))
	copy(out, records)
	SortActivity(out)
	return out
}
