package models

import "time"

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// DashboardStats summarizes a generated candidate set for the metrics cards
type DashboardStats struct {
	Total                      int     `json:"total"`
	Confirmed                  int     `json:"confirmed"`
	NotConfirmed               int     `json:"not_confirmed"`
	ConfirmedShare             float64 `json:"confirmed_share"`
	MeanConfidenceConfirmed    float64 `json:"mean_confidence_confirmed"`
	MeanConfidenceNotConfirmed float64 `json:"mean_confidence_not_confirmed"`
	MeanSNRConfirmed           float64 `json:"mean_snr_confirmed"`
	MeanSNRNotConfirmed        float64 `json:"mean_snr_not_confirmed"`
	BestModel                  string  `json:"best_model"`
	BestAUC                    float64 `json:"best_auc"`
}

// ComparisonRow is one group of the model comparison bar chart
type ComparisonRow struct {
	Model           string  `json:"model"`
	Name            string  `json:"name"`
	AUC             float64 `json:"auc"`
	Accuracy        float64 `json:"accuracy"`
	F1Confirmed     float64 `json:"f1_confirmed"`
	F1NotConfirmed  float64 `json:"f1_not_confirmed"`
	RecallConfirmed float64 `json:"recall_confirmed"`
}

// ModelComparison compares a baseline model against another
type ModelComparison struct {
	Rows          []ComparisonRow `json:"rows"`
	AUCDifference float64         `json:"auc_difference"`
	Leader        string          `json:"leader"`
}

// FeatureRanking is the top-N slice of the feature importances
type FeatureRanking struct {
	Features      []FeatureImportance `json:"features"`
	TopThreeShare float64             `json:"top_three_share"`
}

// SessionResponse is returned when a session is created or fetched
type SessionResponse struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Filename    string         `json:"filename,omitempty"`
	SampleCount int            `json:"sample_count"`
	Stats       DashboardStats `json:"stats"`
}

// CandidatesResponse lists the candidates of a session
type CandidatesResponse struct {
	SessionID  string      `json:"session_id"`
	Count      int         `json:"count"`
	Candidates []Candidate `json:"candidates"`
}

// LightCurveResponse is the light curve of one candidate
type LightCurveResponse struct {
	CandidateID string            `json:"candidate_id"`
	Class       ClassLabel        `json:"class"`
	Confidence  float64           `json:"confidence"`
	Points      []LightCurvePoint `json:"points"`
}

// ROCResponse carries a synthesized curve
type ROCResponse struct {
	Model  string     `json:"model,omitempty"`
	AUC    float64    `json:"auc"`
	Points []ROCPoint `json:"points"`
}

// PointSelectionRequest selects a point on a session curve
type PointSelectionRequest struct {
	Index *int `json:"index"`
}

// PointSelectionResponse is the confusion matrix at a selected curve point
type PointSelectionResponse struct {
	Model     string           `json:"model"`
	Point     ROCPoint         `json:"point"`
	Confusion ConfusionSummary `json:"confusion"`
}

// ConfusionMatrixRequest for /api/confusion-matrix
type ConfusionMatrixRequest struct {
	Point          ROCPoint `json:"point"`
	TotalNegatives int      `json:"total_negatives"`
	TotalPositives int      `json:"total_positives"`
}

// ReferenceConfusionResponse is the fixed confusion matrix of a stored model
type ReferenceConfusionResponse struct {
	Model     string           `json:"model"`
	Point     ROCPoint         `json:"point"`
	Confusion ConfusionSummary `json:"confusion"`
}
