package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fundsight/explain-engine/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadScaler(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scaler.json",
		`{"feature_names": ["total_dana", "relasi"], "mean": [1000, 5], "scale": [200, 2]}`)

	scaler, err := LoadScaler(path)
	if err != nil {
		t.Fatalf("load scaler: %v", err)
	}
	if scaler.Width() != 2 {
		t.Fatalf("expected width 2, got %d", scaler.Width())
	}
}

func TestLoadScalerRejectsMismatchedLengths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scaler.json",
		`{"feature_names": ["total_dana", "relasi"], "mean": [1000], "scale": [200, 2]}`)

	if _, err := LoadScaler(path); err == nil {
		t.Fatal("expected error for mismatched mean length")
	}
}

func TestLoadEncoders(t *testing.T) {
	dir := t.TempDir()
	labelPath := writeFile(t, dir, "kategori.json", `{"classes": ["fintech", "kesehatan"]}`)
	ordinalPath := writeFile(t, dir, "pendidikan.json", `{"ordered": ["SMA", "S1", "S2"]}`)

	encoders, err := LoadEncoders(config.ArtifactsConfig{
		Encoders: map[string]string{"kategori": labelPath},
		Ordinal:  map[string]string{"pendidikan": ordinalPath},
	})
	if err != nil {
		t.Fatalf("load encoders: %v", err)
	}
	if len(encoders) != 2 {
		t.Fatalf("expected 2 encoders, got %d", len(encoders))
	}

	code, err := encoders["kategori"].Transform("kategori", "kesehatan")
	if err != nil || code != 1 {
		t.Fatalf("label encode: code=%v err=%v", code, err)
	}
	code, err = encoders["pendidikan"].Transform("pendidikan", "S2")
	if err != nil || code != 2 {
		t.Fatalf("ordinal encode: code=%v err=%v", code, err)
	}
}

func TestLoadClassifierWidthMismatch(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.json",
		`{"input_width": 2, "layers": [{"weights": [[1], [1]], "biases": [0], "activation": "sigmoid"}]}`)

	_, err := LoadClassifier(config.ArtifactsConfig{ModelBackend: "mlp", ModelPath: modelPath}, 3)
	if err == nil {
		t.Fatal("expected width mismatch error")
	}

	clf, err := LoadClassifier(config.ArtifactsConfig{ModelBackend: "mlp", ModelPath: modelPath}, 2)
	if err != nil {
		t.Fatalf("load classifier: %v", err)
	}
	if clf.InputWidth() != 2 {
		t.Fatalf("unexpected input width: %d", clf.InputWidth())
	}
}

func TestLoadWeights(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "weights.json", `{"weights": [0.5, -0.2]}`)

	weights, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("load weights: %v", err)
	}
	if len(weights) != 2 || weights[1] != -0.2 {
		t.Fatalf("unexpected weights: %v", weights)
	}
}
