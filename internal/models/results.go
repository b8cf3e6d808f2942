package models

// ClassMetrics holds per-class classification metrics of a trained model
type ClassMetrics struct {
	Precision float64 `json:"precision" toml:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" toml:"recall" yaml:"recall"`
	F1        float64 `json:"f1" toml:"f1" yaml:"f1"`
	Support   int     `json:"support" toml:"support" yaml:"support"`
}

// ModelResult is the stored evaluation summary of one named model
type ModelResult struct {
	Key          string       `json:"key" toml:"key" yaml:"key"`
	Name         string       `json:"name" toml:"name" yaml:"name"`
	AUC          float64      `json:"auc" toml:"auc" yaml:"auc"`
	Accuracy     float64      `json:"accuracy" toml:"accuracy" yaml:"accuracy"`
	NotConfirmed ClassMetrics `json:"not_confirmed" toml:"not_confirmed" yaml:"not_confirmed"`
	Confirmed    ClassMetrics `json:"confirmed" toml:"confirmed" yaml:"confirmed"`
}

// TotalSupport is the number of evaluation samples across both classes
func (m ModelResult) TotalSupport() int {
	return m.NotConfirmed.Support + m.Confirmed.Support
}

// FeatureImportance is one feature's share of the model's split gain
type FeatureImportance struct {
	Feature     string  `json:"feature" toml:"feature" yaml:"feature"`
	Importance  float64 `json:"importance" toml:"importance" yaml:"importance"`
	DisplayName string  `json:"display_name" toml:"display_name" yaml:"display_name"`
}

// ReferenceDataset describes the labelled dataset the stored models were evaluated on
type ReferenceDataset struct {
	Confirmed int `json:"confirmed" toml:"confirmed" yaml:"confirmed"`
	Total     int `json:"total" toml:"total" yaml:"total"`
}

// ConfirmedRatio is the prior probability of the Confirmed class
func (r ReferenceDataset) ConfirmedRatio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Confirmed) / float64(r.Total)
}
