package models

// ROCPoint is one operating point on a receiver operating characteristic curve
type ROCPoint struct {
	FalsePositiveRate float64 `json:"fpr"`
	TruePositiveRate  float64 `json:"tpr"`
	Threshold         float64 `json:"threshold"`
}

// ConfusionMatrix holds the 2x2 counts at a fixed threshold
type ConfusionMatrix struct {
	TrueNegatives  int `json:"tn"`
	FalsePositives int `json:"fp"`
	TruePositives  int `json:"tp"`
	FalseNegatives int `json:"fn"`
}

// Total returns the number of classified samples
func (m ConfusionMatrix) Total() int {
	return m.TrueNegatives + m.FalsePositives + m.TruePositives + m.FalseNegatives
}

// Correct returns tn + tp
func (m ConfusionMatrix) Correct() int {
	return m.TrueNegatives + m.TruePositives
}

// Errors returns fp + fn
func (m ConfusionMatrix) Errors() int {
	return m.FalsePositives + m.FalseNegatives
}

// Accuracy is the share of correct classifications, 0 when empty
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.Correct()) / float64(total)
}

// Precision is tp / (tp + fp), 0 when nothing was predicted positive
func (m ConfusionMatrix) Precision() float64 {
	predicted := m.TruePositives + m.FalsePositives
	if predicted == 0 {
		return 0
	}
	return float64(m.TruePositives) / float64(predicted)
}

// Recall is tp / (tp + fn), 0 when there are no positives
func (m ConfusionMatrix) Recall() float64 {
	positives := m.TruePositives + m.FalseNegatives
	if positives == 0 {
		return 0
	}
	return float64(m.TruePositives) / float64(positives)
}

// ConfusionSummary is a confusion matrix with its derived rates
type ConfusionSummary struct {
	Matrix    ConfusionMatrix `json:"matrix"`
	Correct   int             `json:"correct"`
	Errors    int             `json:"errors"`
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
}

// Summarize attaches the derived rates to the matrix
func (m ConfusionMatrix) Summarize() ConfusionSummary {
	return ConfusionSummary{
		Matrix:    m,
		Correct:   m.Correct(),
		Errors:    m.Errors(),
		Accuracy:  m.Accuracy(),
		Precision: m.Precision(),
		Recall:    m.Recall(),
	}
}
