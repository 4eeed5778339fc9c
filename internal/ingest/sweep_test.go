package ingest

import (
	"math"
	"testing"
)

func syntheticRotation(n int) []Raw {
	raw := make([]Raw, n)
	for i := 0; i < n; i++ {
		az := 2 * math.Pi * float64(i) / float64(n)
		raw[i] = Raw{X: math.Cos(az), Y: math.Sin(az), Z: 0}
	}
	return raw
}

func TestIngestDiscardsStartupSweeps(t *testing.T) {
	ing := NewIngestor(16)
	for i := 0; i < SystemDelaySweeps; i++ {
		_, ok := ing.Ingest(syntheticRotation(100))
		if ok {
			t.Fatalf("sweep %d should have been discarded during startup", i)
		}
	}
	_, ok := ing.Ingest(syntheticRotation(100))
	if !ok {
		t.Fatal("expected first post-startup sweep to be accepted")
	}
}

func TestIngestDropsNaNPoints(t *testing.T) {
	ing := NewIngestor(16)
	for i := 0; i < SystemDelaySweeps; i++ {
		ing.Ingest(syntheticRotation(10))
	}
	raw := syntheticRotation(50)
	raw[3].X = math.NaN()

	sweep, ok := ing.Ingest(raw)
	if !ok {
		t.Fatal("expected sweep to be accepted")
	}
	if len(sweep.Points) != 49 {
		t.Errorf("len(Points) = %d, want 49 (one NaN point dropped)", len(sweep.Points))
	}
}

func TestIngestDropsLeadingNaNBeforeAzimuthFraming(t *testing.T) {
	ing := NewIngestor(16)
	for i := 0; i < SystemDelaySweeps; i++ {
		ing.Ingest(syntheticRotation(10))
	}
	raw := syntheticRotation(50)
	raw[0] = Raw{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}

	sweep, ok := ing.Ingest(raw)
	if !ok {
		t.Fatal("expected sweep to be accepted")
	}
	if math.IsNaN(sweep.StartOri) || math.IsNaN(sweep.EndOri) {
		t.Fatalf("StartOri/EndOri must not be NaN when raw[0] is NaN: got %v/%v", sweep.StartOri, sweep.EndOri)
	}
	for _, p := range sweep.Points {
		if math.IsNaN(p.Intensity) {
			t.Fatal("a point's encoded intensity (and therefore relTime) is NaN")
		}
	}
}

func TestIngestCapsPointCount(t *testing.T) {
	ing := NewIngestor(16)
	for i := 0; i < SystemDelaySweeps; i++ {
		ing.Ingest(syntheticRotation(10))
	}
	sweep, ok := ing.Ingest(syntheticRotation(MaxPointsPerSweep + 500))
	if !ok {
		t.Fatal("expected sweep to be accepted")
	}
	if len(sweep.Points) > MaxPointsPerSweep {
		t.Errorf("len(Points) = %d, exceeds cap %d", len(sweep.Points), MaxPointsPerSweep)
	}
}

func TestBeamIndexRejectsOutOfRangeAngles(t *testing.T) {
	if _, ok := beamIndex(1000, 16); ok {
		t.Error("beamIndex(1000, 16) should be rejected, not clamped")
	}
	if _, ok := beamIndex(-1000, 16); ok {
		t.Error("beamIndex(-1000, 16) should be rejected, not clamped")
	}
}

func TestBeamIndexMapsInRangeAngles(t *testing.T) {
	cases := []struct {
		elevationDeg float64
		wantScanID   int
	}{
		{13, 13},
		{-13, 2},
		{0, 15},
		{15, 15},
		{-15, 0},
	}
	for _, c := range cases {
		got, ok := beamIndex(c.elevationDeg, 16)
		if !ok {
			t.Errorf("beamIndex(%v, 16) rejected, want scanID %d", c.elevationDeg, c.wantScanID)
			continue
		}
		if got != c.wantScanID {
			t.Errorf("beamIndex(%v, 16) = %d, want %d", c.elevationDeg, got, c.wantScanID)
		}
	}
}

func TestIngestProducesContiguousScanRanges(t *testing.T) {
	ing := NewIngestor(16)
	for i := 0; i < SystemDelaySweeps; i++ {
		ing.Ingest(syntheticRotation(200))
	}
	sweep, ok := ing.Ingest(syntheticRotation(2000))
	if !ok {
		t.Fatal("expected sweep to be accepted")
	}
	if len(sweep.ScanStartInd) != 16 || len(sweep.ScanEndInd) != 16 {
		t.Fatalf("expected 16-entry scan index arrays")
	}
	// Each scan's raw range is [ScanStartInd-5, ScanEndInd+6); the ranges
	// must tile Points with no gap or overlap.
	if sweep.ScanStartInd[0]-5 != 0 {
		t.Errorf("scan 0 starts at %d, want 0", sweep.ScanStartInd[0]-5)
	}
	for i := 1; i < 16; i++ {
		if sweep.ScanStartInd[i]-5 != sweep.ScanEndInd[i-1]+6 {
			t.Errorf("scan %d starts at %d, want %d", i, sweep.ScanStartInd[i]-5, sweep.ScanEndInd[i-1]+6)
		}
	}
	if sweep.ScanEndInd[15]+6 != len(sweep.Points) {
		t.Errorf("scan 15 ends at %d, want %d", sweep.ScanEndInd[15]+6, len(sweep.Points))
	}
}
