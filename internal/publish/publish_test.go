package publish

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"health-report/internal/config"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"sleep chart", GraphKey("2025-05-01", ChartSleep), "graphs/2025-05-01_sleep_step.png"},
		{"heart rate chart", GraphKey("2025-05-01", ChartHeartRate), "graphs/2025-05-01_activity_heart_rate.png"},
		{"steps chart", GraphKey("2025-05-01", ChartStepsCalories), "graphs/2025-05-01_activity_step_calories.png"},
		{"report", ReportKey("건강리포트", "2025-05-01", "최예름"), "healthreport/건강리포트_2025-05-01_최예름.pdf"},
		{"font", FontKey("NanumGothic-Regular.ttf"), "fonts/NanumGothic-Regular.ttf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestS3Store_URL(t *testing.T) {
	s := &S3Store{}
	if got := s.URL("graphs-bucket", "graphs/2025-05-01_sleep_step.png"); got != "https://graphs-bucket.s3.amazonaws.com/graphs/2025-05-01_sleep_step.png" {
		t.Errorf("URL = %q", got)
	}

	got := s.URL("pdf-bucket", ReportKey("건강리포트", "2025-05-01", "최예름"))
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", got, err)
	}
	if u.Host != "pdf-bucket.s3.amazonaws.com" || u.Path != "/healthreport/건강리포트_2025-05-01_최예름.pdf" {
		t.Errorf("parsed url = %s %s", u.Host, u.Path)
	}
}

func TestMinioStore_URL(t *testing.T) {
	s, err := NewMinioStore(config.StorageConfig{Endpoint: "minio.local:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewMinioStore: %v", err)
	}
	if got := s.URL("graphs", "graphs/x.png"); got != "http://minio.local:9000/graphs/graphs/x.png" {
		t.Errorf("URL = %q", got)
	}
}

func TestLocalStore_PutGet(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStore(root)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "bucket", "graphs/a.png", []byte("one"), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// same key overwrites
	if err := s.Put(ctx, "bucket", "graphs/a.png", []byte("two"), "image/png"); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, err := s.Get(ctx, "bucket", "graphs/a.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Get = %q, want overwritten content", got)
	}

	if _, err := s.Get(ctx, "bucket", "missing.png"); err == nil {
		t.Error("expected error for missing object")
	}
	if err := s.Put(ctx, "bucket", "../../escape", []byte("x"), ""); err == nil {
		t.Error("expected error for a key escaping the root")
	}

	u := s.URL("bucket", "graphs/a.png")
	if !strings.HasPrefix(u, "file://") || !strings.HasSuffix(u, filepath.ToSlash("/bucket/graphs/a.png")) {
		t.Errorf("URL = %q", u)
	}
}

func TestNew_BackendSelection(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, config.StorageConfig{
		Backend: "local", LocalPath: t.TempDir(), GraphBucket: "g", ReportBucket: "r",
	})
	if err != nil {
		t.Fatalf("New(local): %v", err)
	}
	if _, ok := store.(*LocalStore); !ok {
		t.Errorf("expected *LocalStore, got %T", store)
	}

	store, err = New(ctx, config.StorageConfig{
		Backend: "local", LocalPath: t.TempDir(), GraphBucket: "g", ReportBucket: "r",
		PublicBaseURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("New(local+public): %v", err)
	}
	if got := store.URL("g", "graphs/x.png"); got != "https://cdn.example.com/g/graphs/x.png" {
		t.Errorf("URL = %q", got)
	}

	if _, err := New(ctx, config.StorageConfig{Backend: "ftp", GraphBucket: "g", ReportBucket: "r"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := New(ctx, config.StorageConfig{Backend: "local", LocalPath: t.TempDir()}); err == nil {
		t.Error("expected error for missing buckets")
	}
}

func TestPublisher(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	p := NewPublisher(store, "graphs", "reports")
	ctx := context.Background()

	chartURL, err := p.PublishChart(ctx, "2025-05-01", ChartSleep, []byte("png"))
	if err != nil {
		t.Fatalf("PublishChart: %v", err)
	}
	if chartURL != store.URL("graphs", "graphs/2025-05-01_sleep_step.png") {
		t.Errorf("chart URL = %q", chartURL)
	}

	if _, err := p.PublishReport(ctx, "label", "2025-05-01", "user", []byte("%PDF-")); err != nil {
		t.Fatalf("PublishReport: %v", err)
	}
	stored, err := store.Get(ctx, "reports", "healthreport/label_2025-05-01_user.pdf")
	if err != nil || !bytes.Equal(stored, []byte("%PDF-")) {
		t.Errorf("stored report = %q, %v", stored, err)
	}

	if _, err := p.FetchFont(ctx, "missing.ttf"); err == nil {
		t.Error("expected error for missing font")
	}
	if err := store.Put(ctx, "reports", FontKey("f.ttf"), []byte("ttf"), ""); err != nil {
		t.Fatalf("Put font: %v", err)
	}
	font, err := p.FetchFont(ctx, "f.ttf")
	if err != nil || string(font) != "ttf" {
		t.Errorf("FetchFont = %q, %v", font, err)
	}
}
