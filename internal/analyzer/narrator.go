package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"health-report/internal/logger"
	"health-report/internal/record"
	"health-report/internal/textfmt"
)

// Model is the single call a Narrator needs from a language model.
type Model interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Narrator turns records into report-ready prose: prompt, model call, then
// glyph filtering and wrapping for the PDF layout.
type Narrator struct {
	Model     Model
	WrapWidth int
}

func NewNarrator(model Model, wrapWidth int) *Narrator {
	return &Narrator{Model: model, WrapWidth: wrapWidth}
}

func (n *Narrator) Activity(ctx context.Context, records []record.ActivityRecord) (string, error) {
	text, err := n.Model.Analyze(ctx, FormatActivity(records))
	if err != nil {
		return "", fmt.Errorf("failed to analyze activity data: %w", err)
	}
	return n.finish(text), nil
}

func (n *Narrator) Sleep(ctx context.Context, records []record.SleepRecord) (string, error) {
	text, err := n.Model.Analyze(ctx, FormatSleep(records))
	if err != nil {
		return "", fmt.Errorf("failed to analyze sleep data: %w", err)
	}
	return n.finish(text), nil
}

// finish filters per line so paragraph breaks survive Clean.
func (n *Narrator) finish(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = textfmt.Clean(line)
	}
	return textfmt.Wrap(strings.Join(lines, "\n"), n.WrapWidth)
}

func logRequest(model string, elapsed time.Duration, size int) {
	logger.GetLogger().WithFields(logrus.Fields{
		"model":   model,
		"elapsed": elapsed.Round(time.Millisecond),
		"chars":   size,
	}).Debug("Chat completion received")
}
