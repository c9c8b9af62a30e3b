package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fundsight/explain-engine/internal/cache"
	"github.com/fundsight/explain-engine/internal/models"
)

type fakePipeline struct {
	calls   int
	missing []string
	err     error
}

func (f *fakePipeline) Explain(_ context.Context, _ models.RawRecord) (models.Explanation, error) {
	f.calls++
	if f.err != nil {
		return models.Explanation{}, f.err
	}
	return models.Explanation{
		ID:              "test-id",
		Label:           "Sukses",
		Probability:     0.83,
		PositiveReasons: []string{"reason"},
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (f *fakePipeline) MissingFields(models.RawRecord) []string {
	return f.missing
}

func TestExplainServiceRejectsEmptyRecord(t *testing.T) {
	svc := NewExplainService(nil, &fakePipeline{}, nil, 0)
	_, err := svc.Explain(context.Background(), models.RawRecord{})
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestExplainServiceRejectsMissingFields(t *testing.T) {
	pipeline := &fakePipeline{missing: []string{"total_dana"}}
	svc := NewExplainService(nil, pipeline, nil, 0)
	_, err := svc.Explain(context.Background(), models.RawRecord{"relasi": 1})
	var validation *models.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if pipeline.calls != 0 {
		t.Fatal("pipeline must not run for invalid input")
	}
}

func TestExplainServiceCachesResults(t *testing.T) {
	pipeline := &fakePipeline{}
	svc := NewExplainService(nil, pipeline, cache.NewMemoryProvider(time.Minute), time.Minute)
	record := models.RawRecord{"total_dana": 100.0}

	first, err := svc.Explain(context.Background(), record)
	if err != nil {
		t.Fatalf("first explain: %v", err)
	}
	second, err := svc.Explain(context.Background(), record)
	if err != nil {
		t.Fatalf("second explain: %v", err)
	}

	if pipeline.calls != 1 {
		t.Fatalf("expected one pipeline run, got %d", pipeline.calls)
	}
	if first.ID != second.ID {
		t.Fatalf("cached explanation differs: %s vs %s", first.ID, second.ID)
	}
}

func TestExplainServicePropagatesPipelineErrors(t *testing.T) {
	wantErr := errors.New("backend down")
	pipeline := &fakePipeline{err: wantErr}
	svc := NewExplainService(nil, pipeline, nil, 0)

	_, err := svc.Explain(context.Background(), models.RawRecord{"total_dana": 100.0})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected pipeline error, got %v", err)
	}
}
