package inference

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OrtConfig configures the ONNX Runtime backend.
type OrtConfig struct {
	// Library is the path to the onnxruntime shared library.
	Library    string
	ModelPath  string
	InputName  string
	OutputName string
	InputWidth int
}

// OrtClassifier runs an exported ONNX model through onnxruntime. The
// runtime session is not safe for concurrent Run calls, so predictions are
// serialized with a mutex.
type OrtClassifier struct {
	cfg     OrtConfig
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// NewOrtClassifier initialises the ONNX Runtime environment and opens a
// session for the exported model.
func NewOrtClassifier(cfg OrtConfig) (*OrtClassifier, error) {
	if cfg.InputWidth <= 0 {
		return nil, fmt.Errorf("input width must be positive, got %d", cfg.InputWidth)
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	if cfg.Library != "" {
		ort.SetSharedLibraryPath(cfg.Library)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("open onnx session: %w", err)
	}
	return &OrtClassifier{cfg: cfg, session: session}, nil
}

// Predict scores rows as a single batch tensor of shape [n, width].
func (o *OrtClassifier) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	flat := make([]float32, 0, len(rows)*o.cfg.InputWidth)
	for i, row := range rows {
		if len(row) != o.cfg.InputWidth {
			return nil, fmt.Errorf("row %d has %d columns, model expects %d", i, len(row), o.cfg.InputWidth)
		}
		for _, v := range row {
			flat = append(flat, float32(v))
		}
	}

	input, err := ort.NewTensor(ort.NewShape(int64(len(rows)), int64(o.cfg.InputWidth)), flat)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(len(rows)), 1))
	if err != nil {
		return nil, fmt.Errorf("build output tensor: %w", err)
	}
	defer output.Destroy()

	o.mu.Lock()
	err = o.session.Run([]ort.Value{input}, []ort.Value{output})
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}

	raw := output.GetData()
	if len(raw) != len(rows) {
		return nil, fmt.Errorf("model returned %d outputs for %d rows", len(raw), len(rows))
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

// InputWidth returns the configured model input width.
func (o *OrtClassifier) InputWidth() int { return o.cfg.InputWidth }

// Close destroys the session. The shared environment stays up for other
// sessions in the process.
func (o *OrtClassifier) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		err := o.session.Destroy()
		o.session = nil
		return err
	}
	return nil
}
