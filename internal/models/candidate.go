package models

// ClassLabel is the disposition assigned to a simulated candidate
type ClassLabel string

const (
	ClassConfirmed    ClassLabel = "Confirmed"
	ClassNotConfirmed ClassLabel = "NotConfirmed"
)

// LightCurveLength is the number of phase-folded samples per candidate
const LightCurveLength = 100

// LightCurvePoint is one phase-folded flux sample
type LightCurvePoint struct {
	Phase float64 `json:"phase"`
	Flux  float64 `json:"flux"`
}

// Candidate represents one simulated exoplanet observation
type Candidate struct {
	ID              string            `json:"id"`
	Class           ClassLabel        `json:"class"`
	Period          float64           `json:"period"`
	Depth           float64           `json:"depth"`
	SNR             float64           `json:"snr"`
	PlanetRadius    float64           `json:"prad"`
	Confidence      float64           `json:"confidence"`
	LightCurve      []LightCurvePoint `json:"light_curve,omitempty"`
	LogPeriod       float64           `json:"log_period"`
	LogDepth        float64           `json:"log_depth"`
	EquilibriumTemp float64           `json:"teq"`
	Insolation      float64           `json:"insol"`
}

// IsConfirmed reports whether the candidate carries the Confirmed label
func (c *Candidate) IsConfirmed() bool {
	return c.Class == ClassConfirmed
}

// WithoutLightCurve returns a shallow copy with the light curve dropped
func (c Candidate) WithoutLightCurve() Candidate {
	c.LightCurve = nil
	return c
}
