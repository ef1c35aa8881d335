package publish

import (
	"context"
	"fmt"
)

const (
	contentTypePNG = "image/png"
	contentTypePDF = "application/pdf"
)

// Publisher places charts in the graph bucket and the report and its font in
// the report bucket. It never checks for existing objects.
type Publisher struct {
	Store        ObjectStore
	GraphBucket  string
	ReportBucket string
}

func NewPublisher(store ObjectStore, graphBucket, reportBucket string) *Publisher {
	return &Publisher{Store: store, GraphBucket: graphBucket, ReportBucket: reportBucket}
}

// PublishChart uploads a PNG under GraphKey(date, chart) and returns its URL.
func (p *Publisher) PublishChart(ctx context.Context, date, chart string, png []byte) (string, error) {
	key := GraphKey(date, chart)
	if err := p.Store.Put(ctx, p.GraphBucket, key, png, contentTypePNG); err != nil {
		return "", fmt.Errorf("failed to upload chart %s: %w", chart, err)
	}
	return p.Store.URL(p.GraphBucket, key), nil
}

// PublishReport uploads the PDF under ReportKey(label, date, user) and returns its URL.
func (p *Publisher) PublishReport(ctx context.Context, label, date, user string, pdf []byte) (string, error) {
	key := ReportKey(label, date, user)
	if err := p.Store.Put(ctx, p.ReportBucket, key, pdf, contentTypePDF); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return p.Store.URL(p.ReportBucket, key), nil
}

// FetchFont downloads fonts/<file> from the report bucket.
func (p *Publisher) FetchFont(ctx context.Context, file string) ([]byte, error) {
	data, err := p.Store.Get(ctx, p.ReportBucket, FontKey(file))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch font %s: %w", file, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font %s is empty", file)
	}
	return data, nil
}
