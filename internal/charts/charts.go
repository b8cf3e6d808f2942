// Package charts renders the AHAB dashboard as interactive go-echarts HTML.
package charts

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"ahab-backend/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration shared by every dashboard chart.
type ChartConfig struct {
	Width      string   // e.g. "900px"
	Height     string   // e.g. "500px"
	Theme      string
	ShowLegend bool
	Colors     []string // per-series palette, cycled
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#EE6666", "#91CC75", "#FAC858", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4"},
	}
}

func (c ChartConfig) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

func (c ChartConfig) globalOptions(title, subtitle, trigger string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: trigger,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

// ROCSeries is one model's curve as drawn on the ROC chart.
type ROCSeries struct {
	Model  string
	Name   string
	AUC    float64
	Points []models.ROCPoint
}

// Label is the legend entry for the series.
func (s ROCSeries) Label() string {
	return fmt.Sprintf("%s (AUC=%.4f)", s.Name, s.AUC)
}

// ====================
// Candidate charts
// ====================

// symbolSize scales a confidence in [0,1] onto a marker diameter.
func symbolSize(confidence float64) int {
	return 4 + int(confidence*14)
}

// CandidateScatter plots signal-to-noise ratio against planet radius,
// one series per class, with marker size following confidence.
func CandidateScatter(candidates []models.Candidate, config ChartConfig) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(config.globalOptions(
		"Candidate Overview",
		fmt.Sprintf("%d candidates, marker size = confidence", len(candidates)),
		"item",
	)...)
	scatter.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "SNR"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Planet radius (R⊕)"}),
	)

	classes := []models.ClassLabel{models.ClassConfirmed, models.ClassNotConfirmed}
	for i, class := range classes {
		var data []opts.ScatterData
		for _, c := range candidates {
			if c.Class != class {
				continue
			}
			data = append(data, opts.ScatterData{
				Name:       c.ID,
				Value:      []interface{}{c.SNR, c.PlanetRadius},
				SymbolSize: symbolSize(c.Confidence),
			})
		}
		scatter.AddSeries(string(class), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(i)}),
		)
	}
	return scatter
}

// LightCurveChart plots normalised flux against orbital phase for one candidate.
func LightCurveChart(candidate models.Candidate, config ChartConfig) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(config.globalOptions(
		"Light Curve "+candidate.ID,
		fmt.Sprintf("%s, period %.2f d, depth %.0f ppm", candidate.Class, candidate.Period, candidate.Depth),
		"axis",
	)...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Phase", Min: 0, Max: 1}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Normalised flux"}),
	)

	data := make([]opts.LineData, len(candidate.LightCurve))
	for i, p := range candidate.LightCurve {
		data[i] = opts.LineData{Value: []interface{}{p.Phase, p.Flux}}
	}

	colorIndex := 1
	if candidate.IsConfirmed() {
		colorIndex = 0
	}
	line.AddSeries("Flux", data).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(colorIndex)}),
		)
	return line
}

// ====================
// Model charts
// ====================

// ROCChart draws every curve plus the chance diagonal. A non-nil selected
// point is drawn as its own single-point series.
func ROCChart(curves []ROCSeries, selected *models.ROCPoint, config ChartConfig) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(config.globalOptions("ROC Curves", "true positive rate vs false positive rate", "item")...)
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "False positive rate", Min: 0, Max: 1}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "True positive rate", Min: 0, Max: 1}),
	)

	for i, curve := range curves {
		data := make([]opts.LineData, len(curve.Points))
		for j, p := range curve.Points {
			data[j] = opts.LineData{Value: []interface{}{p.FalsePositiveRate, p.TruePositiveRate}}
		}
		line.AddSeries(curve.Label(), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(i)}),
		)
	}

	line.AddSeries("Chance", []opts.LineData{
		{Value: []interface{}{0.0, 0.0}},
		{Value: []interface{}{1.0, 1.0}},
	},
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Color: "#999999"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#999999"}),
	)

	if selected != nil {
		line.AddSeries("Selected threshold", []opts.LineData{{
			Name:       fmt.Sprintf("threshold %.3f", selected.Threshold),
			Value:      []interface{}{selected.FalsePositiveRate, selected.TruePositiveRate},
			SymbolSize: 14,
		}},
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}),
		)
	}
	return line
}

// ComparisonChart groups AUC, accuracy and per-class F1 bars by model.
func ComparisonChart(cmp models.ModelComparison, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	subtitle := ""
	if cmp.Leader != "" {
		subtitle = fmt.Sprintf("leader %s, AUC difference %+.4f", cmp.Leader, cmp.AUCDifference)
	}
	bar.SetGlobalOptions(config.globalOptions("Model Comparison", subtitle, "axis")...)
	bar.SetGlobalOptions(charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1}))

	bar.SetXAxis([]string{"AUC", "Accuracy", "F1 Confirmed", "F1 NotConfirmed"})
	for i, row := range cmp.Rows {
		bar.AddSeries(row.Name, []opts.BarData{
			{Value: row.AUC},
			{Value: row.Accuracy},
			{Value: row.F1Confirmed},
			{Value: row.F1NotConfirmed},
		}, charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(i)}))
	}
	bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

// FeatureImportanceChart draws importances as horizontal bars with the
// most important feature on top. features must be sorted descending.
func FeatureImportanceChart(features []models.FeatureImportance, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(config.globalOptions("Feature Importance", "", "axis")...)

	n := len(features)
	labels := make([]string, n)
	data := make([]opts.BarData, n)
	for i, f := range features {
		// reversed so the category axis reads top-down
		labels[n-1-i] = f.DisplayName
		data[n-1-i] = opts.BarData{Name: f.Feature, Value: f.Importance}
	}

	bar.SetXAxis(labels).
		AddSeries("Importance", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(0)}),
		)
	bar.XYReversal()
	return bar
}

// ====================
// Dashboard page
// ====================

// DashboardView is everything the dashboard page shows.
type DashboardView struct {
	Title      string
	Candidates []models.Candidate
	Focus      *models.Candidate // light curve to show; first candidate with one when nil
	Curves     []ROCSeries
	Selected   *models.ROCPoint
	Comparison models.ModelComparison
	Features   []models.FeatureImportance
}

func (v DashboardView) focus() (models.Candidate, bool) {
	if v.Focus != nil {
		return *v.Focus, len(v.Focus.LightCurve) > 0
	}
	for _, c := range v.Candidates {
		if len(c.LightCurve) > 0 {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// RenderDashboard writes the candidate scatter, a light curve, the ROC
// curves, the model comparison and the feature ranking as one HTML page.
func RenderDashboard(w io.Writer, view DashboardView, config ChartConfig) error {
	if len(view.Candidates) == 0 {
		return errors.New("no candidates to render")
	}

	page := components.NewPage()
	page.PageTitle = view.Title
	if page.PageTitle == "" {
		page.PageTitle = "AHAB Exoplanet Dashboard"
	}

	page.AddCharts(CandidateScatter(view.Candidates, config))
	if focus, ok := view.focus(); ok {
		page.AddCharts(LightCurveChart(focus, config))
	}
	if len(view.Curves) > 0 {
		page.AddCharts(ROCChart(view.Curves, view.Selected, config))
	}
	if len(view.Comparison.Rows) > 0 {
		page.AddCharts(ComparisonChart(view.Comparison, config))
	}
	if len(view.Features) > 0 {
		page.AddCharts(FeatureImportanceChart(view.Features, config))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// RenderDashboardFile writes the dashboard page to outputPath.
func RenderDashboardFile(view DashboardView, config ChartConfig, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create dashboard file: %w", err)
	}
	defer f.Close()

	return RenderDashboard(f, view, config)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
