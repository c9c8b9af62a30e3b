package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fundsight/explain-engine/internal/explain"
	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/models"
	"github.com/fundsight/explain-engine/internal/reason"
	"github.com/fundsight/explain-engine/internal/transform"
)

var testOutcome = reason.Outcome{PositiveLabel: "Sukses", NegativeLabel: "Gagal"}

// buildPipeline wires a real transformer, a single-logistic-unit model, and
// an exact explainer so assertions are deterministic.
func buildPipeline(t *testing.T, weights []float64) *Pipeline {
	t.Helper()

	scaler := &transform.StandardScaler{
		FeatureNames: []string{"total_dana", "relasi", "umur_pendanaan_pertama", "kategori"},
		Mean:         []float64{1_000_000, 5, 2, 1},
		Scale:        []float64{2_000_000, 3, 1.5, 1},
	}
	encoders := map[string]transform.CategoryEncoder{
		"kategori": transform.NewLabelEncoder([]string{"fintech", "kesehatan", "pendidikan"}),
	}
	transformer := transform.NewTransformer(scaler, encoders, []string{"populer"})

	clf, err := inference.NewMLPClassifier(5, []inference.DenseLayer{
		{
			Weights:    weightColumn(weights),
			Biases:     []float64{0},
			Activation: "sigmoid",
		},
	})
	if err != nil {
		t.Fatalf("build classifier: %v", err)
	}

	explainer, err := explain.NewLinearExplainer(weights, explain.ZeroBackground(4, 5))
	if err != nil {
		t.Fatalf("build explainer: %v", err)
	}

	labels := &reason.Labels{Names: map[string]string{"total_dana": "Total Dana yang Dimiliki"}}
	strategy := reason.NewRankedStrategy(labels, testOutcome)

	return NewPipeline(nil, transformer, inference.NewPredictor(clf), explainer, strategy, testOutcome,
		[]Derivation{{Field: "umur_pendanaan_pertama", DateField: "tanggal_pendanaan_pertama"}})
}

func weightColumn(weights []float64) [][]float64 {
	rows := make([][]float64, len(weights))
	for i, w := range weights {
		rows[i] = []float64{w}
	}
	return rows
}

func successRecord() models.RawRecord {
	return models.RawRecord{
		"total_dana":             5_000_000.0,
		"relasi":                 7,
		"umur_pendanaan_pertama": 2.0,
		"kategori":               "kesehatan",
		"populer":                1,
	}
}

func TestPipelineExplainSuccessScenario(t *testing.T) {
	// total_dana dominates; the record sits well above the scaler mean.
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	explanation, err := p.Explain(context.Background(), successRecord())
	if err != nil {
		t.Fatalf("explain: %v", err)
	}

	if explanation.Label != "Sukses" {
		t.Fatalf("expected label Sukses, got %s (p=%v)", explanation.Label, explanation.Probability)
	}
	if explanation.Probability <= 0.5 {
		t.Fatalf("expected probability above threshold, got %v", explanation.Probability)
	}
	if explanation.ID == "" {
		t.Fatal("expected a generated explanation id")
	}
	if len(explanation.PositiveReasons) == 0 {
		t.Fatal("expected supporting reasons")
	}

	top := explanation.PositiveReasons[0]
	if !strings.Contains(top, "'Total Dana yang Dimiliki' (5 juta) mendukung potensi sukses") {
		t.Fatalf("unexpected top reason: %q", top)
	}
}

func TestPipelineEmptyReasonListMarshalsAsArray(t *testing.T) {
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	// Every column sits above its scaler mean, so every contribution is
	// positive and the opposing partition is empty.
	record := models.RawRecord{
		"total_dana":             5_000_000.0,
		"relasi":                 7,
		"umur_pendanaan_pertama": 3.5,
		"kategori":               "pendidikan",
		"populer":                1,
	}

	explanation, err := p.Explain(context.Background(), record)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if len(explanation.NegativeReasons) != 0 {
		t.Fatalf("expected no opposing reasons, got %v", explanation.NegativeReasons)
	}

	data, err := json.Marshal(explanation)
	if err != nil {
		t.Fatalf("marshal explanation: %v", err)
	}
	if !strings.Contains(string(data), `"negative_reasons":[]`) {
		t.Fatalf("empty reason list must marshal as [], got %s", data)
	}
}

func TestPipelineUnknownCategoryNoPartialResult(t *testing.T) {
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	record := successRecord()
	record["kategori"] = "pertanian"

	explanation, err := p.Explain(context.Background(), record)
	var unknown *transform.UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
	if explanation.Label != "" || len(explanation.PositiveReasons) != 0 {
		t.Fatalf("expected zero-value explanation on failure, got %+v", explanation)
	}
}

func TestPipelineDerivesAgeFromDate(t *testing.T) {
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	record := successRecord()
	delete(record, "umur_pendanaan_pertama")
	record["tanggal_pendanaan_pertama"] = "2020-01-15"

	if _, err := p.Explain(context.Background(), record); err != nil {
		t.Fatalf("explain with derived age: %v", err)
	}
	// Derivation must not leak into the caller's record.
	if record.Has("umur_pendanaan_pertama") {
		t.Fatal("caller record was mutated by derivation")
	}
}

func TestPipelineBadDateFallsBackToZeroAge(t *testing.T) {
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	record := successRecord()
	delete(record, "umur_pendanaan_pertama")
	record["tanggal_pendanaan_pertama"] = "15/01/2020"

	explanation, err := p.Explain(context.Background(), record)
	if err != nil {
		t.Fatalf("explain with bad date should not fail: %v", err)
	}
	if explanation.Label == "" {
		t.Fatal("expected a full explanation despite date fallback")
	}
}

func TestPipelineKernelExplainerEndToEnd(t *testing.T) {
	// Same wiring but with the sampling explainer: ranking of the dominant
	// feature must survive sampling noise.
	p := buildPipeline(t, []float64{2, 0.1, 0.05, 0.05, 0.2})

	clf, err := inference.NewMLPClassifier(5, []inference.DenseLayer{
		{Weights: weightColumn([]float64{2, 0.1, 0.05, 0.05, 0.2}), Biases: []float64{0}, Activation: "sigmoid"},
	})
	if err != nil {
		t.Fatalf("build classifier: %v", err)
	}
	kernel, err := explain.NewKernelExplainer(clf, explain.ZeroBackground(4, 5), 32)
	if err != nil {
		t.Fatalf("build kernel explainer: %v", err)
	}
	p.explainer = kernel

	explanation, err := p.Explain(context.Background(), successRecord())
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if len(explanation.PositiveReasons) == 0 {
		t.Fatal("expected supporting reasons")
	}
	if !strings.Contains(explanation.PositiveReasons[0], "Total Dana yang Dimiliki") {
		t.Fatalf("dominant feature not ranked first: %q", explanation.PositiveReasons[0])
	}
}
