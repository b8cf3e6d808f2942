package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"ahab-backend/internal/models"
)

const (
	candidateIDBase = 1000

	// Transit window shape of the synthetic light curves
	transitCenter    = 0.5
	transitHalfWidth = 0.08

	confirmedNoise    = 0.001
	notConfirmedNoise = 0.003
)

// CandidateGenerator produces simulated exoplanet candidates.
// It is safe for concurrent use; draws are serialized on the PRNG.
type CandidateGenerator struct {
	reference models.ReferenceDataset

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCandidateGenerator builds a generator whose class prior follows the
// reference dataset. A nil source is replaced by a randomly seeded one.
func NewCandidateGenerator(reference models.ReferenceDataset, src rand.Source) *CandidateGenerator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &CandidateGenerator{
		reference: reference,
		rng:       rand.New(src),
	}
}

// NewSeededSource returns a deterministic source for the given seed, or a
// randomly seeded one when seed is zero.
func NewSeededSource(seed uint64) rand.Source {
	if seed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Generate returns sampleCount candidates with sequential identifiers.
func (g *CandidateGenerator) Generate(sampleCount int) ([]models.Candidate, error) {
	if sampleCount <= 0 {
		return nil, fmt.Errorf("%w: sample count must be positive, got %d", ErrInvalidArgument, sampleCount)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	confirmedRatio := g.reference.ConfirmedRatio()
	candidates := make([]models.Candidate, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		candidates = append(candidates, g.candidate(i, g.rng.Float64() < confirmedRatio))
	}
	return candidates, nil
}

func (g *CandidateGenerator) candidate(index int, confirmed bool) models.Candidate {
	r := g.rng
	c := models.Candidate{
		ID:    fmt.Sprintf("KOI-%d", candidateIDBase+index),
		Class: models.ClassNotConfirmed,
	}

	if confirmed {
		c.Class = models.ClassConfirmed
		c.SNR = 15 + r.Float64()*35
		c.Period = math.Exp(r.Float64()*4 + 1)
		c.Depth = math.Exp(r.Float64()*2 - 4)
		c.PlanetRadius = 1 + r.Float64()*10
		// 87% look like a confident hit, the rest like a miss
		if r.Float64() < 0.87 {
			c.Confidence = 0.75 + r.Float64()*0.25
		} else {
			c.Confidence = 0.3 + r.Float64()*0.45
		}
	} else {
		c.SNR = 3 + r.Float64()*25
		c.Period = math.Exp(r.Float64() * 6)
		c.Depth = math.Exp(r.Float64()*4 - 6)
		c.PlanetRadius = 0.5 + r.Float64()*15
		if r.Float64() < 0.91 {
			c.Confidence = 0.1 + r.Float64()*0.4
		} else {
			c.Confidence = 0.55 + r.Float64()*0.45
		}
	}

	c.LightCurve = g.lightCurve(c.Depth, confirmed)
	c.LogPeriod = math.Log10(c.Period)
	c.LogDepth = math.Log10(c.Depth)
	c.EquilibriumTemp = 200 + r.Float64()*2000
	c.Insolation = r.Float64() * 1000
	return c
}

// lightCurve folds a Gaussian-shaped transit centred on phase 0.5 into
// LightCurveLength evenly spaced samples over [0, 1).
func (g *CandidateGenerator) lightCurve(depth float64, confirmed bool) []models.LightCurvePoint {
	noise := notConfirmedNoise
	if confirmed {
		noise = confirmedNoise
	}

	points := make([]models.LightCurvePoint, models.LightCurveLength)
	for k := range points {
		phase := float64(k) / models.LightCurveLength
		points[k] = models.LightCurvePoint{
			Phase: phase,
			Flux:  TransitShape(phase, depth/100) + (g.rng.Float64()-0.5)*noise,
		}
	}
	return points
}

// TransitShape is the noiseless relative flux at phase for a transit of the
// given fractional depth.
func TransitShape(phase, transitDepth float64) float64 {
	offset := phase - transitCenter
	if math.Abs(offset) >= transitHalfWidth {
		return 1
	}
	sigma := transitHalfWidth / 3
	return 1 - transitDepth*math.Exp(-math.Pow(offset/sigma, 2))
}
