package models

import "time"

// Label is the binary classification outcome.
type Label string

const (
	// LabelPositive marks the favourable outcome (approved / success).
	LabelPositive Label = "positive"
	// LabelNegative marks the unfavourable outcome (rejected / failure).
	LabelNegative Label = "negative"
)

// PredictionResult is the thresholded classifier output for one record.
// Probability strictly greater than 0.5 yields LabelPositive.
type PredictionResult struct {
	Probability float64
	Label       Label
}

// Attribution is one feature's signed contribution to the prediction,
// aligned index-for-index with the scaled vector's columns.
type Attribution struct {
	Feature string
	Value   float64
}

// Polarity partitions reasons into those favouring or opposing the outcome.
type Polarity string

const (
	// PolaritySupporting marks contributions > 0.
	PolaritySupporting Polarity = "supporting"
	// PolarityOpposing marks contributions <= 0.
	PolarityOpposing Polarity = "opposing"
)

// ReasonEntry is one formatted feature-level justification.
type ReasonEntry struct {
	FeatureLabel string
	DisplayValue string
	Text         string
	Polarity     Polarity
	Contribution float64
}

// Explanation is the final structured output for one record.
type Explanation struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Probability     float64   `json:"probability"`
	PositiveReasons []string  `json:"positive_reasons"`
	NegativeReasons []string  `json:"negative_reasons"`
	CreatedAt       time.Time `json:"created_at"`
}
