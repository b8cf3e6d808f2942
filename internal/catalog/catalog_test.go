package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlCatalog = `
best_model: strong
saved_model: weak
reference:
  confirmed: 10
  total: 40
models:
  - key: strong
    name: Strong
    auc: 0.97
    accuracy: 0.93
    not_confirmed: {precision: 0.95, recall: 0.94, f1: 0.94, support: 30}
    confirmed: {precision: 0.85, recall: 0.9, f1: 0.87, support: 10}
  - key: weak
    name: Weak
    auc: 0.8
    accuracy: 0.75
    not_confirmed: {precision: 0.8, recall: 0.8, f1: 0.8, support: 30}
    confirmed: {precision: 0.5, recall: 0.6, f1: 0.55, support: 10}
features:
  - {feature: koi_prad, importance: 0.4, display_name: Radius}
  - {feature: koi_model_snr, importance: 0.6, display_name: SNR}
`

func TestDefault(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"xgboost", "ahab", "random_forest", "gradient_boosting"}, cat.Keys())
	assert.Equal(t, "xgboost", cat.Best().Key)
	assert.Equal(t, 0.9570, cat.Best().AUC)
	assert.Equal(t, "ahab", cat.Saved().Key)
	assert.Equal(t, 0.9519, cat.Saved().AUC)

	ref := cat.Reference()
	assert.Equal(t, 549, ref.Confirmed)
	assert.Equal(t, 1841, ref.Total)

	gb, err := cat.Model("gradient_boosting")
	require.NoError(t, err)
	assert.Equal(t, 0.88, gb.Accuracy)
	assert.Equal(t, 0.78, gb.Confirmed.Precision)
	assert.Equal(t, 1292, gb.NotConfirmed.Support)
	assert.Equal(t, 1841, gb.TotalSupport())
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "xgboost", cat.Best().Key)
}

func TestTopFeatures(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	top := cat.TopFeatures(8)
	require.Len(t, top, 8)
	assert.Equal(t, "koi_model_snr", top[0].Feature)
	assert.Equal(t, "koi_prad", top[1].Feature)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Importance, top[i].Importance)
	}

	assert.Len(t, cat.TopFeatures(0), 10)
	assert.Len(t, cat.TopFeatures(50), 10)
}

func TestModel_Unknown(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	_, err = cat.Model("svm")
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestModels_ReturnsCopy(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	list := cat.Models()
	list[0].AUC = 0.1

	best := cat.Best()
	assert.Equal(t, 0.9570, best.AUC)
}

func TestParse_YAML(t *testing.T) {
	cat, err := Parse([]byte(yamlCatalog), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, "strong", cat.Best().Key)
	assert.Equal(t, "weak", cat.Saved().Key)
	assert.Equal(t, 0.25, cat.Reference().ConfirmedRatio())
	assert.Equal(t, "koi_model_snr", cat.TopFeatures(1)[0].Feature)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlCatalog), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cat.Models(), 2)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{
			name: "auc above one",
			ext:  ".json",
			data: `{"best_model":"m","saved_model":"m","reference":{"confirmed":1,"total":2},
				"models":[{"key":"m","name":"M","auc":1.5,"accuracy":0.9,
				"not_confirmed":{"precision":1,"recall":1,"f1":1,"support":1},
				"confirmed":{"precision":1,"recall":1,"f1":1,"support":1}}],"features":[]}`,
		},
		{
			name: "unknown best model",
			ext:  ".json",
			data: `{"best_model":"x","saved_model":"m","reference":{"confirmed":1,"total":2},
				"models":[{"key":"m","name":"M","auc":0.9,"accuracy":0.9,
				"not_confirmed":{"precision":1,"recall":1,"f1":1,"support":1},
				"confirmed":{"precision":1,"recall":1,"f1":1,"support":1}}],"features":[]}`,
		},
		{
			name: "no models",
			ext:  ".toml",
			data: "best_model = \"m\"\nsaved_model = \"m\"\n[reference]\nconfirmed = 1\ntotal = 2\n",
		},
		{
			name: "confirmed above total",
			ext:  ".json",
			data: `{"best_model":"m","saved_model":"m","reference":{"confirmed":5,"total":2},
				"models":[{"key":"m","name":"M","auc":0.9,"accuracy":0.9,
				"not_confirmed":{"precision":1,"recall":1,"f1":1,"support":1},
				"confirmed":{"precision":1,"recall":1,"f1":1,"support":1}}],"features":[]}`,
		},
		{
			name: "duplicate key",
			ext:  ".json",
			data: `{"best_model":"m","saved_model":"m","reference":{"confirmed":1,"total":2},
				"models":[
				{"key":"m","name":"M","auc":0.9,"accuracy":0.9,
				"not_confirmed":{"precision":1,"recall":1,"f1":1,"support":1},
				"confirmed":{"precision":1,"recall":1,"f1":1,"support":1}},
				{"key":"m","name":"M2","auc":0.8,"accuracy":0.8,
				"not_confirmed":{"precision":1,"recall":1,"f1":1,"support":1},
				"confirmed":{"precision":1,"recall":1,"f1":1,"support":1}}],"features":[]}`,
		},
		{
			name: "unsupported extension",
			ext:  ".ini",
			data: "best_model=m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Parse([]byte(tt.data), tt.ext)
			assert.Error(t, err)
			assert.Nil(t, cat)
		})
	}
}
