package service

import (
	"fmt"
	"math"

	"ahab-backend/internal/models"
)

// ROCSteps is the number of intervals on the false-positive-rate grid.
// Curves carry ROCSteps+1 points.
const ROCSteps = 50

// ROCSynthesizer builds approximate ROC curves from a summary AUC
type ROCSynthesizer struct {
	monotonic bool
}

// NewROCSynthesizer returns a synthesizer. With monotonic set, every curve
// is passed through MonotoneCurve before it is returned.
func NewROCSynthesizer(monotonic bool) *ROCSynthesizer {
	return &ROCSynthesizer{monotonic: monotonic}
}

// Synthesize returns ROCSteps+1 points approximating a curve with the target AUC.
func (s *ROCSynthesizer) Synthesize(targetAUC float64) ([]models.ROCPoint, error) {
	points, err := SynthesizeROC(targetAUC)
	if err != nil {
		return nil, err
	}
	if s.monotonic {
		points = MonotoneCurve(points)
	}
	return points, nil
}

// SynthesizeROC warps an evenly spaced fpr grid into tpr values with
// tpr = fpr + (auc-0.5)*2*fpr^p. The end points are pinned to (0,0) and (1,1).
// The result is not forced to be non-decreasing.
func SynthesizeROC(targetAUC float64) ([]models.ROCPoint, error) {
	if math.IsNaN(targetAUC) || targetAUC <= 0 || targetAUC > 1 {
		return nil, fmt.Errorf("%w: auc must be in (0, 1], got %v", ErrInvalidArgument, targetAUC)
	}

	p := curveExponent(targetAUC)
	lift := (targetAUC - 0.5) * 2

	points := make([]models.ROCPoint, ROCSteps+1)
	for i := range points {
		fpr := float64(i) / ROCSteps

		var tpr float64
		switch i {
		case 0:
			tpr = 0
		case ROCSteps:
			tpr = 1
		default:
			tpr = fpr + lift*math.Pow(fpr, p)
		}
		tpr = clamp01(tpr)

		points[i] = models.ROCPoint{
			FalsePositiveRate: roundTo(fpr, 4),
			TruePositiveRate:  roundTo(tpr, 4),
			Threshold:         roundTo(1-float64(i)/ROCSteps, 3),
		}
	}
	return points, nil
}

// curveExponent bows the curve harder for stronger classifiers
func curveExponent(auc float64) float64 {
	switch {
	case auc > 0.95:
		return 0.3
	case auc > 0.90:
		return 0.4
	default:
		return 0.5
	}
}

// MonotoneCurve returns a copy whose tpr never decreases along the curve,
// taking the running maximum of the warped samples.
func MonotoneCurve(points []models.ROCPoint) []models.ROCPoint {
	out := make([]models.ROCPoint, len(points))
	best := 0.0
	for i, pt := range points {
		if pt.TruePositiveRate > best {
			best = pt.TruePositiveRate
		}
		pt.TruePositiveRate = best
		out[i] = pt
	}
	return out
}

// IsMonotone reports whether tpr is non-decreasing along the curve
func IsMonotone(points []models.ROCPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].TruePositiveRate < points[i-1].TruePositiveRate {
			return false
		}
	}
	return true
}

// TrapezoidAUC integrates the curve with the trapezoid rule
func TrapezoidAUC(points []models.ROCPoint) float64 {
	area := 0.0
	for i := 1; i < len(points); i++ {
		dx := points[i].FalsePositiveRate - points[i-1].FalsePositiveRate
		area += dx * (points[i].TruePositiveRate + points[i-1].TruePositiveRate) / 2
	}
	return area
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
