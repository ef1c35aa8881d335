package record

import (
	"testing"
	"time"
)

func TestSortSleep_Ascending(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	records := []SleepRecord{
		{Timestamp: base.Add(48 * time.Hour), Deep: 3},
		{Timestamp: base.Add(24 * time.Hour), Deep: 2},
		{Timestamp: base, Deep: 1},
		{Timestamp: base.Add(24 * time.Hour), Deep: 4},
	}

	SortSleep(records)

	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("records not ascending at %d: %v before %v", i, records[i].Timestamp, records[i-1].Timestamp)
		}
	}
	// stable for equal timestamps
	if records[1].Deep != 2 || records[2].Deep != 4 {
		t.Errorf("equal timestamps reordered: got %v then %v", records[1].Deep, records[2].Deep)
	}
}

func TestSortedActivity_LeavesInputUntouched(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	in := []ActivityRecord{
		{Timestamp: base.Add(2 * time.Hour), Steps: 300},
		{Timestamp: base.Add(1 * time.Hour), Steps: 200},
		{Timestamp: base, Steps: 100},
	}

	out := SortedActivity(in)

	if in[0].Steps != 300 {
		t.Errorf("input was modified: first steps = %d", in[0].Steps)
	}
	want := []int64{100, 200, 300}
	for i, w := range want {
		if out[i].Steps != w {
			t.Errorf("out[%d].Steps = %d, want %d", i, out[i].Steps, w)
		}
	}
}

func TestSleepRecord_Total(t *testing.T) {
	r := SleepRecord{Deep: 2, Light: 3, REM: 1, Awake: 0.5}
	if got := r.Total(); got != 6.5 {
		t.Errorf("Total() = %v, want 6.5", got)
	}
}
