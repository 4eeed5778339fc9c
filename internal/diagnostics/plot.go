package diagnostics

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/scan-registration/internal/security"
)

// PlotFeatureCounts draws a bar chart of one sweep's four feature-pool
// sizes and writes it to outputDir, returning the written file's path.
// outputDir is validated to prevent the caller's sweep ID from escaping
// the intended export directory.
func PlotFeatureCounts(outputDir, sweepID string, sharp, lessSharp, flat, lessFlat int) (string, error) {
	safeName := security.SanitizeFilename(sweepID)
	outPath := filepath.Join(outputDir, safeName+"_features.png")
	if err := security.ValidatePathWithinDirectory(outPath, outputDir); err != nil {
		return "", fmt.Errorf("diagnostics: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Feature pool sizes: " + sweepID
	p.Y.Label.Text = "points"

	values := plotter.Values{float64(sharp), float64(lessSharp), float64(flat), float64(lessFlat)}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return "", fmt.Errorf("diagnostics: building bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX("sharp", "less-sharp", "flat", "less-flat")

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return "", fmt.Errorf("diagnostics: saving plot: %w", err)
	}
	return outPath, nil
}

// curvatureProfilePoints is a small helper kept for callers that want to
// plot a scan's curvature profile directly rather than just pool counts.
func curvatureProfilePoints(curvature []float64) plotter.XYs {
	pts := make(plotter.XYs, len(curvature))
	for i, c := range curvature {
		pts[i].X = float64(i)
		pts[i].Y = c
	}
	return pts
}
