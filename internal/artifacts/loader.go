// Package artifacts loads the training-time exports the pipeline depends
// on: the fitted scaler, the categorical encoders, and the classifier.
// Everything loaded here is read-only for the life of the process.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fundsight/explain-engine/internal/config"
	"github.com/fundsight/explain-engine/internal/inference"
	"github.com/fundsight/explain-engine/internal/transform"
	"github.com/fundsight/explain-engine/internal/utils"
)

// LoadScaler reads a fitted standard scaler export.
func LoadScaler(path string) (*transform.StandardScaler, error) {
	var scaler transform.StandardScaler
	if err := readJSON(path, &scaler); err != nil {
		return nil, utils.NewAppError("artifacts.LoadScaler", "load scaler artifact", err)
	}
	if len(scaler.FeatureNames) == 0 {
		return nil, utils.NewAppError("artifacts.LoadScaler", "scaler artifact has no feature names", nil)
	}
	if len(scaler.Mean) != len(scaler.FeatureNames) || len(scaler.Scale) != len(scaler.FeatureNames) {
		return nil, utils.NewAppError("artifacts.LoadScaler", "scaler mean/scale length does not match feature names", nil)
	}
	return &scaler, nil
}

// LoadEncoders builds the per-feature category encoders from label and
// ordinal vocabulary exports.
func LoadEncoders(cfg config.ArtifactsConfig) (map[string]transform.CategoryEncoder, error) {
	encoders := make(map[string]transform.CategoryEncoder, len(cfg.Encoders)+len(cfg.Ordinal))

	for feature, path := range cfg.Encoders {
		var artifact struct {
			Classes []string `json:"classes"`
		}
		if err := readJSON(path, &artifact); err != nil {
			return nil, utils.NewAppError("artifacts.LoadEncoders", fmt.Sprintf("load encoder for %s", feature), err)
		}
		if len(artifact.Classes) == 0 {
			return nil, utils.NewAppError("artifacts.LoadEncoders", fmt.Sprintf("encoder for %s has empty vocabulary", feature), nil)
		}
		encoders[feature] = transform.NewLabelEncoder(artifact.Classes)
	}

	for feature, path := range cfg.Ordinal {
		var artifact struct {
			Ordered []string `json:"ordered"`
		}
		if err := readJSON(path, &artifact); err != nil {
			return nil, utils.NewAppError("artifacts.LoadEncoders", fmt.Sprintf("load ordinal encoder for %s", feature), err)
		}
		if len(artifact.Ordered) == 0 {
			return nil, utils.NewAppError("artifacts.LoadEncoders", fmt.Sprintf("ordinal encoder for %s has empty vocabulary", feature), nil)
		}
		encoders[feature] = transform.NewOrdinalEncoder(artifact.Ordered)
	}

	return encoders, nil
}

// LoadClassifier opens the configured model backend. inputWidth is the
// full model-input column count (scaler columns plus passthrough).
func LoadClassifier(cfg config.ArtifactsConfig, inputWidth int) (inference.Classifier, error) {
	switch cfg.ModelBackend {
	case "mlp":
		clf, err := inference.LoadMLPClassifier(cfg.ModelPath)
		if err != nil {
			return nil, utils.NewAppError("artifacts.LoadClassifier", "load mlp artifact", err)
		}
		if clf.InputWidth() != inputWidth {
			return nil, utils.NewAppError("artifacts.LoadClassifier",
				fmt.Sprintf("model expects %d columns, transform produces %d", clf.InputWidth(), inputWidth), nil)
		}
		return clf, nil
	case "onnx":
		clf, err := inference.NewOrtClassifier(inference.OrtConfig{
			Library:    cfg.OrtLibrary,
			ModelPath:  cfg.ModelPath,
			InputName:  cfg.InputName,
			OutputName: cfg.OutputName,
			InputWidth: inputWidth,
		})
		if err != nil {
			return nil, utils.NewAppError("artifacts.LoadClassifier", "open onnx model", err)
		}
		return clf, nil
	default:
		return nil, utils.NewAppError("artifacts.LoadClassifier",
			fmt.Sprintf("unsupported model backend %q", cfg.ModelBackend), nil)
	}
}

// LoadWeights reads the linear explainer's weight vector artifact.
func LoadWeights(path string) ([]float64, error) {
	var artifact struct {
		Weights []float64 `json:"weights"`
	}
	if err := readJSON(path, &artifact); err != nil {
		return nil, utils.NewAppError("artifacts.LoadWeights", "load weights artifact", err)
	}
	if len(artifact.Weights) == 0 {
		return nil, utils.NewAppError("artifacts.LoadWeights", "weights artifact is empty", nil)
	}
	return artifact.Weights, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
