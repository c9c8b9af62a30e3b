package transform

// StandardScaler applies the affine transform fitted at training time:
// (x - Mean[i]) / Scale[i] per feature, in FeatureNames order. Column order
// must exactly match fit order; the scaler validates presence but cannot
// detect semantically swapped columns.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// Width returns the number of fitted columns.
func (s *StandardScaler) Width() int {
	return len(s.FeatureNames)
}

// Transform scales the named columns of values into fit order. Missing
// columns yield *ShapeMismatchError.
func (s *StandardScaler) Transform(values map[string]float64) ([]float64, error) {
	var missing []string
	out := make([]float64, len(s.FeatureNames))
	for i, name := range s.FeatureNames {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	if len(missing) > 0 {
		return nil, &ShapeMismatchError{Missing: missing}
	}
	return out, nil
}

// InverseTransform maps scaled columns back to original units. The input
// must carry exactly the fitted columns.
func (s *StandardScaler) InverseTransform(scaled []float64) (map[string]float64, error) {
	if len(scaled) != len(s.FeatureNames) {
		return nil, &ShapeMismatchError{Want: len(s.FeatureNames), Got: len(scaled)}
	}
	out := make(map[string]float64, len(scaled))
	for i, name := range s.FeatureNames {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[name] = scaled[i]*scale + s.Mean[i]
	}
	return out, nil
}
