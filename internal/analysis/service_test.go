package analysis

import (
	"testing"

	"ahab-backend/internal/catalog"
	"ahab-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T) *DashboardService {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewDashboardService(cat)
}

func TestStats(t *testing.T) {
	svc := newDashboard(t)

	candidates := []models.Candidate{
		{ID: "KOI-1000", Class: models.ClassConfirmed, Confidence: 0.9, SNR: 30},
		{ID: "KOI-1001", Class: models.ClassConfirmed, Confidence: 0.7, SNR: 20},
		{ID: "KOI-1002", Class: models.ClassNotConfirmed, Confidence: 0.2, SNR: 5},
		{ID: "KOI-1003", Class: models.ClassNotConfirmed, Confidence: 0.4, SNR: 9},
		{ID: "KOI-1004", Class: models.ClassNotConfirmed, Confidence: 0.3, SNR: 10},
	}

	stats := svc.Stats(candidates)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Confirmed)
	assert.Equal(t, 3, stats.NotConfirmed)
	assert.InDelta(t, 0.4, stats.ConfirmedShare, 1e-12)
	assert.InDelta(t, 0.8, stats.MeanConfidenceConfirmed, 1e-12)
	assert.InDelta(t, 0.3, stats.MeanConfidenceNotConfirmed, 1e-12)
	assert.InDelta(t, 25, stats.MeanSNRConfirmed, 1e-12)
	assert.InDelta(t, 8, stats.MeanSNRNotConfirmed, 1e-12)
	assert.Equal(t, "XGBoost", stats.BestModel)
	assert.Equal(t, 0.9570, stats.BestAUC)
}

func TestStats_Empty(t *testing.T) {
	stats := newDashboard(t).Stats(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.ConfirmedShare)
	assert.Zero(t, stats.MeanConfidenceConfirmed)
}

func TestCompare(t *testing.T) {
	svc := newDashboard(t)

	cmp, err := svc.Compare("ahab", "xgboost")
	require.NoError(t, err)
	require.Len(t, cmp.Rows, 2)

	assert.Equal(t, "ahab", cmp.Rows[0].Model)
	assert.Equal(t, 0.83, cmp.Rows[0].F1Confirmed)
	assert.Equal(t, 0.85, cmp.Rows[0].RecallConfirmed)
	assert.Equal(t, "xgboost", cmp.Rows[1].Model)
	assert.Equal(t, 0.84, cmp.Rows[1].F1Confirmed)
	assert.Equal(t, 0.93, cmp.Rows[1].F1NotConfirmed)
	assert.InDelta(t, 0.0051, cmp.AUCDifference, 1e-9)
	assert.Equal(t, "xgboost", cmp.Leader)

	assert.Equal(t, cmp, svc.DefaultComparison())

	_, err = svc.Compare("ahab", "svm")
	assert.ErrorIs(t, err, catalog.ErrUnknownModel)
}

func TestFeatureRanking(t *testing.T) {
	svc := newDashboard(t)

	ranking := svc.FeatureRanking(0)
	assert.Len(t, ranking.Features, DefaultTopFeatures)
	assert.InDelta(t, 0.572074, ranking.TopThreeShare, 1e-6)

	assert.Len(t, svc.FeatureRanking(3).Features, 3)
}

func TestReferenceConfusion(t *testing.T) {
	svc := newDashboard(t)

	ref, err := svc.ReferenceConfusion("xgboost")
	require.NoError(t, err)
	assert.Equal(t, models.ConfusionMatrix{
		TrueNegatives:  1176,
		FalsePositives: 116,
		TruePositives:  478,
		FalseNegatives: 71,
	}, ref.Confusion.Matrix)
	assert.Equal(t, 1654, ref.Confusion.Correct)

	_, err = svc.ReferenceConfusion("nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownModel)
}

func TestSelectPoint(t *testing.T) {
	svc := newDashboard(t)

	sel, err := svc.SelectPoint("ahab", models.ROCPoint{FalsePositiveRate: 0.1164, TruePositiveRate: 0.85, Threshold: 0.5})
	require.NoError(t, err)
	assert.Equal(t, models.ConfusionMatrix{
		TrueNegatives:  1142,
		FalsePositives: 150,
		TruePositives:  467,
		FalseNegatives: 82,
	}, sel.Confusion.Matrix)
	assert.Equal(t, 0.5, sel.Point.Threshold)
}
