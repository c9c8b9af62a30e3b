package explain

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/fundsight/explain-engine/internal/models"
)

// linearModel is sigmoid-free on purpose: for an additive model the
// coalition-sampling estimate is exact regardless of the drawn orderings,
// which makes assertions deterministic.
type linearModel struct {
	weights []float64
}

func (m linearModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for j, v := range row {
			sum += m.weights[j] * v
		}
		out[i] = sum
	}
	return out, nil
}

func (m linearModel) InputWidth() int { return len(m.weights) }
func (m linearModel) Close() error    { return nil }

func TestKernelExplainerRecoversAdditiveContributions(t *testing.T) {
	model := linearModel{weights: []float64{2, -1, 0.5}}
	explainer, err := NewKernelExplainer(model, ZeroBackground(4, 3), 8)
	if err != nil {
		t.Fatalf("build explainer: %v", err)
	}

	vec := models.ScaledVector{
		Columns: []string{"a", "b", "c"},
		Values:  []float64{1, 2, -2},
	}
	attrs, err := explainer.attribute(context.Background(), vec, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}

	want := []float64{2, -2, -1}
	for i, attr := range attrs {
		if attr.Feature != vec.Columns[i] {
			t.Fatalf("attribution %d misaligned: %s", i, attr.Feature)
		}
		if math.Abs(attr.Value-want[i]) > 1e-9 {
			t.Fatalf("column %s: want %v, got %v", attr.Feature, want[i], attr.Value)
		}
	}
}

func TestKernelExplainerStableRanking(t *testing.T) {
	// Nonlinear model: estimates vary between runs, but the dominant
	// feature must stay on top.
	model := linearModel{weights: []float64{10, 0.1, 0.1}}
	explainer, err := NewKernelExplainer(model, ZeroBackground(2, 3), 16)
	if err != nil {
		t.Fatalf("build explainer: %v", err)
	}

	vec := models.ScaledVector{
		Columns: []string{"dominant", "minor1", "minor2"},
		Values:  []float64{1, 1, 1},
	}
	for run := 0; run < 5; run++ {
		attrs, err := explainer.Attribute(context.Background(), vec)
		if err != nil {
			t.Fatalf("attribute run %d: %v", run, err)
		}
		top, topVal := "", 0.0
		for _, attr := range attrs {
			if math.Abs(attr.Value) > topVal {
				top, topVal = attr.Feature, math.Abs(attr.Value)
			}
		}
		if top != "dominant" {
			t.Fatalf("run %d: dominant feature lost top rank to %s", run, top)
		}
	}
}

func TestKernelExplainerRejectsWidthMismatch(t *testing.T) {
	model := linearModel{weights: []float64{1, 1}}
	explainer, err := NewKernelExplainer(model, ZeroBackground(1, 2), 4)
	if err != nil {
		t.Fatalf("build explainer: %v", err)
	}
	_, err = explainer.Attribute(context.Background(), models.ScaledVector{
		Columns: []string{"a"},
		Values:  []float64{1},
	})
	if err == nil {
		t.Fatal("expected width mismatch error")
	}
}

func TestLinearExplainerExact(t *testing.T) {
	explainer, err := NewLinearExplainer([]float64{3, -2}, [][]float64{{1, 1}, {3, 3}})
	if err != nil {
		t.Fatalf("build explainer: %v", err)
	}
	attrs, err := explainer.Attribute(context.Background(), models.ScaledVector{
		Columns: []string{"a", "b"},
		Values:  []float64{4, 0},
	})
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	// baseline is (2, 2): contributions 3*(4-2) and -2*(0-2).
	if attrs[0].Value != 6 || attrs[1].Value != 4 {
		t.Fatalf("unexpected contributions: %+v", attrs)
	}
}
