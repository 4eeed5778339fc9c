package diagnostics

import (
	"testing"
)

func TestPlotFeatureCountsWritesFile(t *testing.T) {
	dir := t.TempDir()
	path, err := PlotFeatureCounts(dir, "sweep-1", 2, 20, 4, 120)
	if err != nil {
		t.Fatalf("PlotFeatureCounts failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected a non-empty output path")
	}
}

func TestCurvatureProfilePointsLength(t *testing.T) {
	pts := curvatureProfilePoints([]float64{0, 1, 4, 9})
	if len(pts) != 4 {
		t.Fatalf("len(pts) = %d, want 4", len(pts))
	}
	if pts[2].Y != 4 {
		t.Errorf("pts[2].Y = %v, want 4", pts[2].Y)
	}
}
