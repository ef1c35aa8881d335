package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestWithRun_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	l := GetLogger()
	prev := l.Out
	l.SetOutput(&buf)
	defer l.SetOutput(prev)

	WithRun("run-123").WithField("stage", "fetch-sleep").Info("Stage finished")

	out := buf.String()
	for _, want := range []string{"run_id=run-123", "stage=fetch-sleep", `msg="Stage finished"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q lacks %s", out, want)
		}
	}
}

func TestNewFileWriter(t *testing.T) {
	dir := t.TempDir()

	if _, err := newFileWriter(LogConfig{FilePath: dir + "/logs/report.log"}); err != nil {
		t.Errorf("newFileWriter with defaults: %v", err)
	}
	if _, err := newFileWriter(LogConfig{FilePath: dir + "/report.log", RotationTime: "daily"}); err == nil {
		t.Error("expected error for invalid rotation_time")
	}
}
