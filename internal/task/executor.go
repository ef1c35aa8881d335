// Package task runs one health report end to end: fetch, chart, narrate,
// compose and publish.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"health-report/internal/analyzer"
	"health-report/internal/chart"
	"health-report/internal/config"
	"health-report/internal/logger"
	"health-report/internal/publish"
	"health-report/internal/record"
	"health-report/internal/report"
	"health-report/internal/storage"
)

// Stage names, in execution order.
const (
	StageFetchFont          = "fetch-font"
	StageFetchSleep         = "fetch-sleep"
	StageFetchActivity      = "fetch-activity"
	StageRenderCharts       = "render-charts"
	StageUploadCharts       = "upload-charts"
	StageGenerateNarratives = "generate-narratives"
	StageComposeDocument    = "compose-document"
	StageUploadDocument     = "upload-document"
)

// DateLayout formats the report date used in storage keys and the document title.
const DateLayout = "2006-01-02"

// ErrRunInProgress is returned by TryRun when another run holds the lock.
var ErrRunInProgress = errors.New("a report run is already in progress")

// StageError names the stage a run aborted in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type ImageURLs struct {
	HeartRate     string `json:"heart_rate"`
	StepsCalories string `json:"steps_calories"`
	Sleep         string `json:"sleep"`
}

// Result is what a successful run reports back to its caller.
type Result struct {
	Status      int       `json:"status"`
	Message     string    `json:"message"`
	DocumentURL string    `json:"document_url"`
	ImageURLs   ImageURLs `json:"image_urls"`
}

// Narrator writes the two report narratives.
type Narrator interface {
	Activity(ctx context.Context, records []record.ActivityRecord) (string, error)
	Sleep(ctx context.Context, records []record.SleepRecord) (string, error)
}

type Executor struct {
	source    storage.RecordSource
	publisher *publish.Publisher
	narrator  Narrator
	report    config.ReportConfig
	location  *time.Location
	now       func() time.Time

	runMutex sync.Mutex
}

// NewExecutor wires an executor from already-built collaborators.
func NewExecutor(source storage.RecordSource, publisher *publish.Publisher, narrator Narrator, rc config.ReportConfig) (*Executor, error) {
	loc, err := rc.Location()
	if err != nil {
		return nil, err
	}
	if rc.UserName == "" {
		return nil, fmt.Errorf("report.user_name is required")
	}
	return &Executor{
		source:    source,
		publisher: publisher,
		narrator:  narrator,
		report:    rc,
		location:  loc,
		now:       time.Now,
	}, nil
}

// New builds the production executor: SQL source, configured object store and
// the OpenAI-compatible narrator.
func New(ctx context.Context, cfg *config.Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, err
	}
	source, err := storage.NewSQLSource(cfg.Database, loc)
	if err != nil {
		return nil, err
	}

	store, err := publish.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	publisher := publish.NewPublisher(store, cfg.Storage.GraphBucket, cfg.Storage.ReportBucket)

	model, err := analyzer.NewOpenAI(cfg.OpenAI)
	if err != nil {
		return nil, err
	}

	return NewExecutor(source, publisher, analyzer.NewNarrator(model, cfg.Report.WrapWidth), cfg.Report)
}

// SetClock replaces the run clock.
func (e *Executor) SetClock(now func() time.Time) {
	e.now = now
}

// Run produces today's report. Runs are serialized.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	return e.RunFor(ctx, e.now())
}

// RunFor produces the report stamped with day's date in the report time zone.
func (e *Executor) RunFor(ctx context.Context, day time.Time) (*Result, error) {
	e.runMutex.Lock()
	defer e.runMutex.Unlock()
	return e.run(ctx, day)
}

// TryRun is Run for schedulers: it skips instead of waiting when a run is active.
func (e *Executor) TryRun(ctx context.Context) (*Result, error) {
	if !e.runMutex.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.runMutex.Unlock()
	return e.run(ctx, e.now())
}

func (e *Executor) run(ctx context.Context, day time.Time) (*Result, error) {
	runID := uuid.New().String()
	date := day.In(e.location).Format(DateLayout)
	log := logger.WithRun(runID).WithField("date", date)

	start := time.Now()
	log.Info("Report run started")

	var (
		font     []byte
		sleep    []record.SleepRecord
		activity []record.ActivityRecord
		charts   struct{ heartRate, stepsCalories, sleep []byte }
		urls     ImageURLs
		texts    struct{ activity, sleep string }
		document []byte
		docURL   string
	)

	err := e.stage(log, StageFetchFont, func() (err error) {
		font, err = e.publisher.FetchFont(ctx, e.report.FontFile)
		return err
	})
	if err == nil {
		err = e.stage(log, StageFetchSleep, func() (err error) {
			sleep, err = e.source.FetchSleep(ctx)
			log.Debugf("Fetched %d sleep records", len(sleep))
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageFetchActivity, func() (err error) {
			activity, err = e.source.FetchActivity(ctx)
			log.Debugf("Fetched %d activity records", len(activity))
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageRenderCharts, func() error {
			renderer, err := chart.NewRenderer(font, e.location)
			if err != nil {
				return err
			}
			if charts.sleep, err = renderer.Sleep(sleep); err != nil {
				return err
			}
			if charts.heartRate, err = renderer.HeartRate(activity); err != nil {
				return err
			}
			charts.stepsCalories, err = renderer.StepsCalories(activity)
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageUploadCharts, func() (err error) {
			if urls.Sleep, err = e.publisher.PublishChart(ctx, date, publish.ChartSleep, charts.sleep); err != nil {
				return err
			}
			if urls.HeartRate, err = e.publisher.PublishChart(ctx, date, publish.ChartHeartRate, charts.heartRate); err != nil {
				return err
			}
			urls.StepsCalories, err = e.publisher.PublishChart(ctx, date, publish.ChartStepsCalories, charts.stepsCalories)
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageGenerateNarratives, func() (err error) {
			if texts.activity, err = e.narrator.Activity(ctx, activity); err != nil {
				return err
			}
			texts.sleep, err = e.narrator.Sleep(ctx, sleep)
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageComposeDocument, func() (err error) {
			doc := report.HealthReport(e.report.UserName, date, texts.activity, texts.sleep,
				charts.heartRate, charts.stepsCalories, charts.sleep)
			composer := &report.Composer{FontTTF: font, CreatedAt: e.now()}
			document, err = composer.Compose(doc)
			return err
		})
	}
	if err == nil {
		err = e.stage(log, StageUploadDocument, func() (err error) {
			docURL, err = e.publisher.PublishReport(ctx, e.report.Label, date, e.report.UserName, document)
			return err
		})
	}
	if err != nil {
		log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Error("Report run aborted")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"document_url": docURL,
		"elapsed":      time.Since(start).Round(time.Millisecond),
	}).Info("Report run finished")

	return &Result{
		Status:      200,
		Message:     fmt.Sprintf("PDF 업로드 완료: %s", docURL),
		DocumentURL: docURL,
		ImageURLs:   urls,
	}, nil
}

func (e *Executor) stage(log *logrus.Entry, name string, fn func() error) error {
	log = log.WithField("stage", name)
	start := time.Now()
	log.Debug("Stage started")

	if err := fn(); err != nil {
		log.WithError(err).Error("Stage failed")
		return &StageError{Stage: name, Err: err}
	}

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("Stage finished")
	return nil
}
