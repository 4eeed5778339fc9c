package feature

import (
	"math"

	"github.com/banshee-data/scan-registration/internal/point"
)

// markOccludedAndParallel marks points in picked that are either on the
// occluded side of a depth discontinuity or lie on a near-parallel
// surface, excluding them from feature candidacy. occlusionDepthRatio and
// parallelOutlierRatio are the two threshold knobs. pts and picked are the
// full per-sweep slices (not a per-scan sub-slice); start and end are the
// scan's own ScanStartInd/ScanEndInd, which already carry the +5/-6 margin
// needed for the i-5..i+6 neighbor window to stay off the scan's own raw
// edges. Re-applying that margin on top of an already-margined slice would
// silently exempt another five points at each end of every scan from this
// filter, so this operates on absolute indices into the full sweep.
//
// The loop intentionally runs through end, not end-1: it inspects
// pts[i+1] inside the loop body and, on the "near point is closer"
// branch, reaches as far as pts[i+6]. Those neighbor reads can cross into
// an adjacent scan's margin points near a scan boundary — preserved as
// the original algorithm defines it, since it too operates on one
// contiguous, scan-sorted array rather than isolating each scan.
func markOccludedAndParallel(pts []point.Point, picked []bool, start, end int, occlusionDepthRatio, parallelOutlierRatio float64) {
	for i := start; i <= end; i++ {
		depth1 := pts[i].Range()
		depth2 := pts[i+1].Range()

		diff := squaredDist(pts[i], pts[i+1])
		if diff > 0.1 {
			if depth1 > depth2 {
				wx := pts[i+1].X - pts[i].X*depth2/depth1
				wy := pts[i+1].Y - pts[i].Y*depth2/depth1
				wz := pts[i+1].Z - pts[i].Z*depth2/depth1
				if math.Sqrt(wx*wx+wy*wy+wz*wz)/depth2 < occlusionDepthRatio {
					for k := i - 5; k <= i; k++ {
						if k >= 0 {
							picked[k] = true
						}
					}
				}
			} else {
				wx := pts[i].X - pts[i+1].X*depth1/depth2
				wy := pts[i].Y - pts[i+1].Y*depth1/depth2
				wz := pts[i].Z - pts[i+1].Z*depth1/depth2
				if math.Sqrt(wx*wx+wy*wy+wz*wz)/depth1 < occlusionDepthRatio {
					for k := i + 1; k <= i+6; k++ {
						if k < len(pts) {
							picked[k] = true
						}
					}
				}
			}
		}

		diffPrev := squaredDist(pts[i], pts[i-1])
		dis := depth1 * depth1
		if diff > parallelOutlierRatio*dis && diffPrev > parallelOutlierRatio*dis {
			picked[i] = true
		}
	}
}

func squaredDist(a, b point.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}
