package feature

import (
	"math"

	"github.com/banshee-data/scan-registration/internal/point"
)

type voxelKey struct{ x, y, z int64 }

// VoxelDownsample collapses pts onto a grid of cubic voxels of the given
// leaf size, replacing every point that falls in the same voxel with their
// centroid. Point order is not preserved.
func VoxelDownsample(pts []point.Point, leafSize float64) []point.Point {
	if leafSize <= 0 || len(pts) == 0 {
		return pts
	}

	type accum struct {
		sumX, sumY, sumZ float64
		sumI             float64
		n                int
	}
	voxels := make(map[voxelKey]*accum)

	keyFor := func(p point.Point) voxelKey {
		return voxelKey{
			x: int64(math.Floor(p.X / leafSize)),
			y: int64(math.Floor(p.Y / leafSize)),
			z: int64(math.Floor(p.Z / leafSize)),
		}
	}

	for _, p := range pts {
		k := keyFor(p)
		a, ok := voxels[k]
		if !ok {
			a = &accum{}
			voxels[k] = a
		}
		a.sumX += p.X
		a.sumY += p.Y
		a.sumZ += p.Z
		a.sumI += p.Intensity
		a.n++
	}

	out := make([]point.Point, 0, len(voxels))
	for _, a := range voxels {
		n := float64(a.n)
		out = append(out, point.Point{
			X:         a.sumX / n,
			Y:         a.sumY / n,
			Z:         a.sumZ / n,
			Intensity: a.sumI / n,
		})
	}
	return out
}
