// Package feature classifies the de-skewed points of a sweep into sharp
// and less-sharp corner features and flat and less-flat surface features,
// following a per-scan curvature ranking with occlusion and
// parallel-surface rejection. It depends only on point and config, and has
// no notion of sweeps, IMU state, or network ingestion.
package feature

import "github.com/banshee-data/scan-registration/internal/point"

// curvatureMargin is how many neighbors on each side contribute to a
// point's curvature; points closer than this to either end of their scan
// have no defined curvature and are never selected.
const curvatureMargin = 5

// computeCurvature returns, for every point in pts, the squared magnitude
// of the discrete Laplacian formed from its curvatureMargin neighbors on
// each side. Points within curvatureMargin of either end of pts are left
// at zero.
func computeCurvature(pts []point.Point) []float64 {
	c := make([]float64, len(pts))
	for i := curvatureMargin; i < len(pts)-curvatureMargin; i++ {
		var dx, dy, dz float64
		for k := -curvatureMargin; k <= curvatureMargin; k++ {
			if k == 0 {
				continue
			}
			dx += pts[i+k].X
			dy += pts[i+k].Y
			dz += pts[i+k].Z
		}
		dx -= float64(2*curvatureMargin) * pts[i].X
		dy -= float64(2*curvatureMargin) * pts[i].Y
		dz -= float64(2*curvatureMargin) * pts[i].Z
		c[i] = dx*dx + dy*dy + dz*dz
	}
	return c
}
