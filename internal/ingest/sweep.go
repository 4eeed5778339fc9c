// Package ingest turns a raw, unordered point cloud for one rotation of
// the sensor into a Sweep: points remapped into the internal frame, sorted
// by scan (beam), and tagged with each point's relative time within the
// sweep via the halfPassed azimuth latch. It depends on point and frame
// only — it knows nothing about IMU samples, motion compensation, or
// feature extraction.
package ingest

import (
	"math"

	"github.com/banshee-data/scan-registration/internal/frame"
	"github.com/banshee-data/scan-registration/internal/point"
)

// SystemDelaySweeps is the number of initial sweeps to discard while the
// sensor warms up, before any ingestion is attempted.
const SystemDelaySweeps = 20

// MaxPointsPerSweep is a hard cap on the number of points accepted into a
// single sweep; any additional points are dropped.
const MaxPointsPerSweep = 40000

// Raw is a single point as delivered by the sensor, in sensor-frame
// coordinates (x-forward, y-left, z-up), before axis remap or beam
// assignment.
type Raw struct {
	X, Y, Z float64
}

// Sweep holds one full rotation's worth of points, each carrying its
// originating scan index and relative sweep time (packed into
// point.Point.Intensity), along with the per-scan index ranges needed by
// the feature extractor to avoid mixing points across beams.
type Sweep struct {
	Points []point.Point

	// ScanStartInd[i] / ScanEndInd[i] are the inclusive bounds of scan i's
	// feature candidates within Points: its first point's index plus 5 and
	// its last point's index minus 5.
	ScanStartInd []int
	ScanEndInd   []int

	// StartOri/EndOri are the azimuths, in radians, of the sweep's first
	// and last points after normalization; each point's relTime is derived
	// from where its own azimuth falls between them.
	StartOri, EndOri float64
}

// Ingestor accumulates raw points into sweeps, applying the startup delay,
// NaN filtering, per-scan beam assignment, and the halfPassed azimuth
// latch that assigns each point's time within the sweep.
type Ingestor struct {
	numScans    int
	sweepsSeen  int
	startupDone bool
}

// NewIngestor returns an Ingestor configured for a sensor with the given
// number of scan lines (beams).
func NewIngestor(numScans int) *Ingestor {
	return &Ingestor{numScans: numScans}
}

// beamIndex maps a point's elevation angle to a scan (beam) index,
// rounding half-away-from-zero and branching on the sign of the rounded
// angle exactly as the original per-point scan assignment does: a
// positive rounded angle is the scan ID directly, a non-positive one
// wraps around to the top of the beam range. Points whose resulting
// scanID falls outside [0, numScans-1] are rejected (ok=false) rather
// than clamped into the nearest valid beam.
func beamIndex(elevationDeg float64, numScans int) (scanID int, ok bool) {
	half := 0.5
	if elevationDeg < 0.0 {
		half = -0.5
	}
	rounded := int(elevationDeg + half)

	if rounded > 0 {
		scanID = rounded
	} else {
		scanID = rounded + (numScans - 1)
	}

	if scanID > numScans-1 || scanID < 0 {
		return 0, false
	}
	return scanID, true
}

// Ingest converts one rotation's raw points into a Sweep. It returns
// ok=false while the ingestor is still discarding the startup sweeps.
func (ing *Ingestor) Ingest(raw []Raw) (Sweep, bool) {
	ing.sweepsSeen++
	if ing.sweepsSeen <= SystemDelaySweeps {
		return Sweep{}, false
	}

	scanPoints := make([][]point.Point, ing.numScans)

	// NaN removal must happen before azimuth framing: startOri/endOri are
	// read off the first and last surviving points, and a NaN in either
	// raw[0] or raw[len(raw)-1] would otherwise poison every point's
	// relTime for the whole sweep.
	filtered := make([]Raw, 0, len(raw))
	for _, r := range raw {
		if math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsNaN(r.Z) {
			continue
		}
		filtered = append(filtered, r)
	}

	startOri := 0.0
	endOri := 0.0
	halfPassed := false

	if len(filtered) > 0 {
		startOri = -math.Atan2(filtered[0].Y, filtered[0].X)
		last := filtered[len(filtered)-1]
		endOri = -math.Atan2(last.Y, last.X) + 2*math.Pi
		if endOri-startOri > 3*math.Pi {
			endOri -= 2 * math.Pi
		} else if endOri-startOri < math.Pi {
			endOri += 2 * math.Pi
		}
	}

	count := 0
	for _, r := range filtered {
		if count >= MaxPointsPerSweep {
			break
		}

		ix, iy, iz := frame.RemapSensorToInternal(r.X, r.Y, r.Z)

		elevationDeg := math.Atan2(iy, math.Sqrt(ix*ix+iz*iz)) * 180 / math.Pi
		scanID, ok := beamIndex(elevationDeg, ing.numScans)
		if !ok {
			continue
		}

		ori := -math.Atan2(ix, iz)
		if !halfPassed {
			if ori < startOri-math.Pi/2 {
				ori += 2 * math.Pi
			} else if ori > startOri+math.Pi*3/2 {
				ori -= 2 * math.Pi
			}
			if ori-startOri > math.Pi {
				halfPassed = true
			}
		} else {
			ori += 2 * math.Pi
			if ori < endOri-math.Pi*3/2 {
				ori += 2 * math.Pi
			} else if ori > endOri+math.Pi/2 {
				ori -= 2 * math.Pi
			}
		}

		relTime := (ori - startOri) / (endOri - startOri)
		// relTime is intentionally left unclipped: a malformed frame (e.g.
		// one where the azimuth doesn't monotonically sweep [startOri,
		// endOri]) can push it outside [0,1], and the original
		// implementation propagates that as-is rather than clamping.

		scanPoints[scanID] = append(scanPoints[scanID], point.Point{
			X:         ix,
			Y:         iy,
			Z:         iz,
			Intensity: point.EncodeIntensity(scanID, relTime),
		})
		count++
	}

	sweep := Sweep{StartOri: startOri, EndOri: endOri}
	sweep.ScanStartInd = make([]int, ing.numScans)
	sweep.ScanEndInd = make([]int, ing.numScans)
	for i := 0; i < ing.numScans; i++ {
		sweep.ScanStartInd[i] = len(sweep.Points) + 5
		sweep.Points = append(sweep.Points, scanPoints[i]...)
		sweep.ScanEndInd[i] = len(sweep.Points) - 6
	}

	return sweep, true
}
