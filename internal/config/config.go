package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the explanation engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Explainer ExplainerConfig `yaml:"explainer"`
	Reason    ReasonConfig    `yaml:"reason"`
	Derived   []DerivedField  `yaml:"derived"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// ArtifactsConfig locates the trained model, encoder, and scaler exports.
// The scaler, encoders, and model must come from the same training run;
// attributions are only meaningful for that exact pairing.
type ArtifactsConfig struct {
	ModelBackend string `yaml:"modelBackend"` // "mlp" or "onnx"
	ModelPath    string `yaml:"modelPath"`
	// OrtLibrary is the onnxruntime shared library path (onnx backend only).
	OrtLibrary  string            `yaml:"ortLibrary"`
	InputName   string            `yaml:"inputName"`
	OutputName  string            `yaml:"outputName"`
	ScalerPath  string            `yaml:"scalerPath"`
	Encoders    map[string]string `yaml:"encoders"`        // feature -> encoder artifact path
	Ordinal     map[string]string `yaml:"ordinalEncoders"` // feature -> ordered-vocabulary artifact path
	Passthrough []string          `yaml:"passthrough"`     // columns appended to the model input unscaled
}

// ExplainerConfig tunes the attribution engine.
type ExplainerConfig struct {
	Engine         string `yaml:"engine"` // "kernel" or "linear"
	BackgroundRows int    `yaml:"backgroundRows"`
	Samples        int    `yaml:"samples"`
	// WeightsPath holds the linear engine's weight vector artifact.
	WeightsPath string `yaml:"weightsPath"`
}

// ReasonConfig controls reason-text generation.
type ReasonConfig struct {
	Strategy      string `yaml:"strategy"` // "ranked" or "sampled"
	SampleSize    int    `yaml:"sampleSize"`
	PositiveLabel string `yaml:"positiveLabel"`
	NegativeLabel string `yaml:"negativeLabel"`
	LabelsPath    string `yaml:"labelsPath"`
}

// DerivedField declares an age feature computed from a date field when the
// numeric value is absent from the request.
type DerivedField struct {
	Field     string `yaml:"field"`
	DateField string `yaml:"dateField"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls in-memory memoization of explanations.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// Load initialises Config from a YAML file and optional environment
// overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("EXPLAIN_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			ModelBackend: "mlp",
			ModelPath:    "artifacts/model.json",
			ScalerPath:   "artifacts/scaler.json",
			InputName:    "input",
			OutputName:   "output",
		},
		Explainer: ExplainerConfig{
			Engine:         "kernel",
			BackgroundRows: 10,
			Samples:        16,
		},
		Reason: ReasonConfig{
			Strategy:      "ranked",
			SampleSize:    5,
			PositiveLabel: "Sukses",
			NegativeLabel: "Gagal",
			LabelsPath:    "configs/labels/default.yaml",
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache:   CacheConfig{Enabled: false, TTL: 5 * time.Minute},
	}
}

func validate(cfg Config) error {
	switch cfg.Artifacts.ModelBackend {
	case "mlp", "onnx":
	default:
		return fmt.Errorf("unsupported model backend %q", cfg.Artifacts.ModelBackend)
	}
	switch cfg.Explainer.Engine {
	case "kernel", "linear":
	default:
		return fmt.Errorf("unsupported explainer engine %q", cfg.Explainer.Engine)
	}
	switch cfg.Reason.Strategy {
	case "ranked", "sampled":
	default:
		return fmt.Errorf("unsupported reason strategy %q", cfg.Reason.Strategy)
	}
	if cfg.Explainer.BackgroundRows <= 0 {
		return fmt.Errorf("explainer background rows must be positive")
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXPLAIN_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
	if v := os.Getenv("EXPLAIN_ENGINE_MODEL_BACKEND"); v != "" {
		cfg.Artifacts.ModelBackend = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_MODEL_PATH"); v != "" {
		cfg.Artifacts.ModelPath = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_ORT_LIBRARY"); v != "" {
		cfg.Artifacts.OrtLibrary = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_SCALER_PATH"); v != "" {
		cfg.Artifacts.ScalerPath = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_EXPLAINER"); v != "" {
		cfg.Explainer.Engine = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_EXPLAINER_SAMPLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Explainer.Samples = n
		}
	}
	if v := os.Getenv("EXPLAIN_ENGINE_REASON_STRATEGY"); v != "" {
		cfg.Reason.Strategy = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_LABELS_PATH"); v != "" {
		cfg.Reason.LabelsPath = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("EXPLAIN_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("EXPLAIN_ENGINE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("EXPLAIN_ENGINE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
}
