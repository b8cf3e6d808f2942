package service

import (
	"fmt"
	"math"

	"ahab-backend/internal/models"
)

// maxClassTotal keeps class totals exactly representable as float64
const maxClassTotal = 1 << 53

// DeriveConfusionMatrix splits the class totals at an ROC operating point.
// tn and tp are rounded; fp and fn take the remainder so each class sums exactly.
func DeriveConfusionMatrix(point models.ROCPoint, totalNegatives, totalPositives int) (models.ConfusionMatrix, error) {
	if totalNegatives < 0 || totalPositives < 0 {
		return models.ConfusionMatrix{}, fmt.Errorf("%w: class totals must be non-negative, got %d/%d",
			ErrInvalidArgument, totalNegatives, totalPositives)
	}
	if int64(totalNegatives) > maxClassTotal || int64(totalPositives) > maxClassTotal {
		return models.ConfusionMatrix{}, fmt.Errorf("%w: class totals must not exceed %d, got %d/%d",
			ErrInvalidArgument, int64(maxClassTotal), totalNegatives, totalPositives)
	}
	if !inUnitInterval(point.FalsePositiveRate) || !inUnitInterval(point.TruePositiveRate) {
		return models.ConfusionMatrix{}, fmt.Errorf("%w: rates must be in [0, 1], got fpr=%v tpr=%v",
			ErrInvalidArgument, point.FalsePositiveRate, point.TruePositiveRate)
	}

	tn := int(math.Round(float64(totalNegatives) * (1 - point.FalsePositiveRate)))
	tp := int(math.Round(float64(totalPositives) * point.TruePositiveRate))

	return models.ConfusionMatrix{
		TrueNegatives:  tn,
		FalsePositives: totalNegatives - tn,
		TruePositives:  tp,
		FalseNegatives: totalPositives - tp,
	}, nil
}

// OperatingPoint is the ROC point implied by a stored model's per-class recall
func OperatingPoint(result models.ModelResult) models.ROCPoint {
	return models.ROCPoint{
		FalsePositiveRate: 1 - result.NotConfirmed.Recall,
		TruePositiveRate:  result.Confirmed.Recall,
	}
}

// ReferenceConfusionMatrix derives the fixed confusion matrix of a stored model
// from its recall and support figures.
func ReferenceConfusionMatrix(result models.ModelResult) (models.ConfusionMatrix, error) {
	return DeriveConfusionMatrix(OperatingPoint(result), result.NotConfirmed.Support, result.Confirmed.Support)
}

func inUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
