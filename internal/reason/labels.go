package reason

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Labels maps raw feature names to human-readable display names and
// declares which features carry a unit suffix. Loaded once at startup from
// a YAML pack; a missing pack falls back to humanized feature names.
type Labels struct {
	Names       map[string]string `yaml:"names"`
	UnitMarkers []string          `yaml:"unit_markers"`
	UnitSuffix  string            `yaml:"unit_suffix"`
}

// LoadLabels reads a label pack from path. An empty path or missing file
// returns a nil pack, which is valid: lookups then fall back to humanizing.
func LoadLabels(path string) (*Labels, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var labels Labels
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	return &labels, nil
}

// DisplayName resolves a feature's display name, falling back to the raw
// name with separators replaced by spaces.
func (l *Labels) DisplayName(feature string) string {
	if l != nil {
		if name, ok := l.Names[feature]; ok {
			return name
		}
	}
	return humanize(feature)
}

// Unit returns the unit suffix for a feature, or "" when none applies. A
// feature gets the suffix when its raw name contains any unit marker.
func (l *Labels) Unit(feature string) string {
	markers := []string{"umur", "usia", "durasi"}
	suffix := " tahun"
	if l != nil {
		if len(l.UnitMarkers) > 0 {
			markers = l.UnitMarkers
		}
		if l.UnitSuffix != "" {
			suffix = l.UnitSuffix
		}
	}
	lower := strings.ToLower(feature)
	for _, marker := range markers {
		if marker != "" && strings.Contains(lower, marker) {
			return suffix
		}
	}
	return ""
}

func humanize(feature string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(feature)
}
