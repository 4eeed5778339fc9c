package feature

import (
	"sort"

	"github.com/banshee-data/scan-registration/internal/config"
	"github.com/banshee-data/scan-registration/internal/point"
)

// Label classifies a point's role in the map built from this sweep.
type Label int

const (
	LabelSurfLessFlat Label = 0
	LabelSurfFlat     Label = -1
	LabelCornerLess   Label = 1
	LabelCornerSharp  Label = 2
)

// Features holds the four point sets the registration pipeline emits.
type Features struct {
	CornerSharp     []point.Point
	CornerLessSharp []point.Point
	SurfFlat        []point.Point
	SurfLessFlat    []point.Point
}

// Extract classifies pts (already de-skewed and ordered by scan) into the
// four feature categories. scanStartInd/scanEndInd are the inclusive
// bounds of each scan's feature candidates within pts, as produced by the
// ingest package.
func Extract(pts []point.Point, scanStartInd, scanEndInd []int, cfg *config.TuningConfig) Features {
	curvature := computeCurvature(pts)
	picked := make([]bool, len(pts))
	label := make([]Label, len(pts))

	curvatureThreshold := cfg.GetCurvatureThreshold()
	occlusionRatio := cfg.GetOcclusionDepthRatio()
	outlierRatio := cfg.GetParallelOutlierRatio()
	spreadThreshold := cfg.GetNeighborSpreadThreshold()
	sectors := cfg.GetSectorsPerScan()
	sharpCap := cfg.GetSharpPerSector()
	lessSharpCap := cfg.GetLessSharpPerSector()
	flatCap := cfg.GetFlatPerSector()

	var feat Features

	for scan := 0; scan < len(scanStartInd); scan++ {
		start, end := scanStartInd[scan], scanEndInd[scan]
		if end-start < curvatureMargin*2+1 {
			continue
		}

		markOccludedAndParallel(pts, picked, start, end, occlusionRatio, outlierRatio)

		for sec := 0; sec < sectors; sec++ {
			// Multiply-before-divide proportional split, matching the
			// original's six-sector sp/ep formula generalized to an
			// arbitrary sector count: this keeps every sector within one
			// point of equal size instead of dumping the remainder of an
			// uneven split into the last sector. Note secEnd intentionally
			// lands one short of end on the final sector, just as the
			// original leaves the scan's very last point out of every
			// sector's candidate pool.
			secStart := (start*(sectors-sec) + end*sec) / sectors
			secEnd := (start*(sectors-1-sec)+end*(sec+1))/sectors - 1
			if secEnd > end {
				secEnd = end
			}
			if secStart > secEnd {
				continue
			}

			idx := make([]int, 0, secEnd-secStart+1)
			for i := secStart; i <= secEnd; i++ {
				idx = append(idx, i)
			}

			// Sharp/less-sharp corners: highest curvature first.
			sort.Slice(idx, func(a, b int) bool { return curvature[idx[a]] > curvature[idx[b]] })
			sharpCount := 0
			for _, i := range idx {
				if picked[i] {
					continue
				}
				if curvature[i] <= curvatureThreshold {
					break
				}
				sharpCount++
				if sharpCount <= sharpCap {
					label[i] = LabelCornerSharp
					feat.CornerSharp = append(feat.CornerSharp, pts[i])
					feat.CornerLessSharp = append(feat.CornerLessSharp, pts[i])
				} else if sharpCount <= lessSharpCap {
					label[i] = LabelCornerLess
					feat.CornerLessSharp = append(feat.CornerLessSharp, pts[i])
				} else {
					break
				}
				markNeighborsPicked(pts, picked, i, spreadThreshold)
			}

			// Flat surfaces: lowest curvature first.
			sort.Slice(idx, func(a, b int) bool { return curvature[idx[a]] < curvature[idx[b]] })
			flatCount := 0
			for _, i := range idx {
				if picked[i] {
					continue
				}
				if curvature[i] >= curvatureThreshold {
					break
				}
				label[i] = LabelSurfFlat
				feat.SurfFlat = append(feat.SurfFlat, pts[i])
				flatCount++
				markNeighborsPicked(pts, picked, i, spreadThreshold)
				if flatCount >= flatCap {
					break
				}
			}
		}

		// Everything in this scan not promoted to a sharper category
		// (label <= LabelSurfLessFlat, i.e. not a corner) is a less-flat
		// surface candidate; a voxel filter downsamples these before
		// emission.
		var lessFlatScan []point.Point
		for i := start; i <= end; i++ {
			if label[i] <= LabelSurfLessFlat {
				lessFlatScan = append(lessFlatScan, pts[i])
			}
		}
		feat.SurfLessFlat = append(feat.SurfLessFlat, VoxelDownsample(lessFlatScan, cfg.GetVoxelLeafSize())...)
	}

	return feat
}

// markNeighborsPicked marks pts[i] and up to five neighbors in each
// direction as picked, excluding them from any later selection. Each
// direction stops at the first neighbor whose squared distance to the
// previous point in that direction exceeds spreadThreshold, preventing a
// single sharp edge or flat patch from claiming every slot.
func markNeighborsPicked(pts []point.Point, picked []bool, i int, spreadThreshold float64) {
	picked[i] = true
	for l := 1; l <= 5; l++ {
		if i+l >= len(pts) {
			break
		}
		if squaredDist(pts[i+l], pts[i+l-1]) > spreadThreshold {
			break
		}
		picked[i+l] = true
	}
	for l := 1; l <= 5; l++ {
		if i-l < 0 {
			break
		}
		if squaredDist(pts[i-l], pts[i-l+1]) > spreadThreshold {
			break
		}
		picked[i-l] = true
	}
}
