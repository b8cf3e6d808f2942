package analysis

import (
	"fmt"

	"ahab-backend/internal/catalog"
	"ahab-backend/internal/models"
	"ahab-backend/internal/service"
)

// DefaultTopFeatures is how many features the importance chart shows
const DefaultTopFeatures = 8

type DashboardService struct {
	catalog *catalog.Catalog
}

func NewDashboardService(cat *catalog.Catalog) *DashboardService {
	return &DashboardService{catalog: cat}
}

// Stats summarizes a generated dataset for the metrics cards
func (s *DashboardService) Stats(candidates []models.Candidate) models.DashboardStats {
	best := s.catalog.Best()
	stats := models.DashboardStats{
		Total:     len(candidates),
		BestModel: best.Name,
		BestAUC:   best.AUC,
	}

	var confSum, notConfSum, snrSum, notSNRSum float64
	for i := range candidates {
		c := &candidates[i]
		if c.IsConfirmed() {
			stats.Confirmed++
			confSum += c.Confidence
			snrSum += c.SNR
		} else {
			stats.NotConfirmed++
			notConfSum += c.Confidence
			notSNRSum += c.SNR
		}
	}

	if stats.Total > 0 {
		stats.ConfirmedShare = float64(stats.Confirmed) / float64(stats.Total)
	}
	if stats.Confirmed > 0 {
		stats.MeanConfidenceConfirmed = confSum / float64(stats.Confirmed)
		stats.MeanSNRConfirmed = snrSum / float64(stats.Confirmed)
	}
	if stats.NotConfirmed > 0 {
		stats.MeanConfidenceNotConfirmed = notConfSum / float64(stats.NotConfirmed)
		stats.MeanSNRNotConfirmed = notSNRSum / float64(stats.NotConfirmed)
	}
	return stats
}

// Compare builds the grouped bar chart rows for two catalog models.
// AUCDifference is other minus base.
func (s *DashboardService) Compare(baseKey, otherKey string) (models.ModelComparison, error) {
	base, err := s.catalog.Model(baseKey)
	if err != nil {
		return models.ModelComparison{}, err
	}
	other, err := s.catalog.Model(otherKey)
	if err != nil {
		return models.ModelComparison{}, err
	}

	leader := base.Key
	if other.AUC > base.AUC {
		leader = other.Key
	}

	return models.ModelComparison{
		Rows:          []models.ComparisonRow{comparisonRow(base), comparisonRow(other)},
		AUCDifference: other.AUC - base.AUC,
		Leader:        leader,
	}, nil
}

// DefaultComparison is the saved model against the best one
func (s *DashboardService) DefaultComparison() models.ModelComparison {
	cmp, err := s.Compare(s.catalog.Saved().Key, s.catalog.Best().Key)
	if err != nil {
		// both keys were checked when the catalog was built
		panic(fmt.Sprintf("analysis: default comparison: %v", err))
	}
	return cmp
}

func comparisonRow(m models.ModelResult) models.ComparisonRow {
	return models.ComparisonRow{
		Model:           m.Key,
		Name:            m.Name,
		AUC:             m.AUC,
		Accuracy:        m.Accuracy,
		F1Confirmed:     m.Confirmed.F1,
		F1NotConfirmed:  m.NotConfirmed.F1,
		RecallConfirmed: m.Confirmed.Recall,
	}
}

// FeatureRanking returns the top n features and the share the first three carry.
// n <= 0 falls back to DefaultTopFeatures.
func (s *DashboardService) FeatureRanking(n int) models.FeatureRanking {
	if n <= 0 {
		n = DefaultTopFeatures
	}
	all := s.catalog.Features()

	share := 0.0
	for i := 0; i < len(all) && i < 3; i++ {
		share += all[i].Importance
	}

	return models.FeatureRanking{
		Features:      s.catalog.TopFeatures(n),
		TopThreeShare: share,
	}
}

// ReferenceConfusion derives the fixed confusion matrix of a catalog model
func (s *DashboardService) ReferenceConfusion(key string) (models.ReferenceConfusionResponse, error) {
	m, err := s.catalog.Model(key)
	if err != nil {
		return models.ReferenceConfusionResponse{}, err
	}

	matrix, err := service.ReferenceConfusionMatrix(m)
	if err != nil {
		return models.ReferenceConfusionResponse{}, err
	}

	return models.ReferenceConfusionResponse{
		Model:     m.Key,
		Point:     service.OperatingPoint(m),
		Confusion: matrix.Summarize(),
	}, nil
}

// SelectPoint derives the confusion matrix at a curve point using the
// model's class supports as totals
func (s *DashboardService) SelectPoint(key string, point models.ROCPoint) (models.PointSelectionResponse, error) {
	m, err := s.catalog.Model(key)
	if err != nil {
		return models.PointSelectionResponse{}, err
	}

	matrix, err := service.DeriveConfusionMatrix(point, m.NotConfirmed.Support, m.Confirmed.Support)
	if err != nil {
		return models.PointSelectionResponse{}, err
	}

	return models.PointSelectionResponse{
		Model:     m.Key,
		Point:     point,
		Confusion: matrix.Summarize(),
	}, nil
}
