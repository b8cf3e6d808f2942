// Command render writes a standalone AHAB dashboard page for a freshly
// generated candidate set.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"ahab-backend/internal/analysis"
	"ahab-backend/internal/catalog"
	"ahab-backend/internal/charts"
	"ahab-backend/internal/service"
)

var (
	outPath     = flag.String("out", "dashboard.html", "output HTML file")
	samples     = flag.Int("samples", 150, "number of candidates to generate")
	seed        = flag.Uint64("seed", 0, "PRNG seed, 0 for a random one")
	model       = flag.String("model", "", "model whose midpoint threshold is highlighted")
	catalogPath = flag.String("catalog", "", "catalog override (.toml, .yaml or .json)")
	monotonic   = flag.Bool("monotonic", false, "force non-decreasing ROC curves")
	open        = flag.Bool("open", false, "open the page in the default browser")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Fatalf("render: %v", err)
	}
}

func run() error {
	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		return err
	}

	gen := service.NewCandidateGenerator(cat.Reference(), service.NewSeededSource(*seed))
	candidates, err := gen.Generate(*samples)
	if err != nil {
		return err
	}

	synth := service.NewROCSynthesizer(*monotonic)
	dashboard := analysis.NewDashboardService(cat)

	view := charts.DashboardView{
		Candidates: candidates,
		Comparison: dashboard.DefaultComparison(),
		Features:   dashboard.FeatureRanking(analysis.DefaultTopFeatures).Features,
	}
	for _, m := range cat.Models() {
		points, err := synth.Synthesize(m.AUC)
		if err != nil {
			return fmt.Errorf("synthesize %s: %w", m.Key, err)
		}
		view.Curves = append(view.Curves, charts.ROCSeries{Model: m.Key, Name: m.Name, AUC: m.AUC, Points: points})
		if m.Key == *model {
			mid := points[len(points)/2]
			view.Selected = &mid
		}
	}
	if *model != "" && view.Selected == nil {
		return fmt.Errorf("%w %q", catalog.ErrUnknownModel, *model)
	}

	if err := charts.RenderDashboardFile(view, charts.DefaultChartConfig(), *outPath); err != nil {
		return err
	}

	stats := dashboard.Stats(candidates)
	fmt.Fprintf(os.Stdout, "Wrote %s: %d candidates (%d confirmed, %d not confirmed)\n",
		*outPath, stats.Total, stats.Confirmed, stats.NotConfirmed)

	if *open {
		return charts.OpenInBrowser(*outPath)
	}
	return nil
}
