package emit

import (
	"time"

	"github.com/banshee-data/scan-registration/internal/feature"
	"github.com/banshee-data/scan-registration/internal/point"
)

// Output is everything one sweep produces: the four feature clouds plus a
// four-point IMU transform summary.
type Output struct {
	SweepID   string
	Timestamp time.Time

	CornerSharp     []point.Point
	CornerLessSharp []point.Point
	SurfFlat        []point.Point
	SurfLessFlat    []point.Point

	// FullCloud is the complete de-skewed sweep, every accepted point
	// carrying its originating scanID and relative sweep time encoded into
	// Intensity by point.EncodeIntensity, published alongside the four
	// feature pools rather than discarded once feature extraction has
	// consumed it.
	FullCloud []point.Point

	// IMUTrans packs the sweep-start orientation, sweep-end orientation,
	// the last point's displacement residual (Δs_local) and its velocity
	// residual (Δv_local) into four points, each using the (pitch, yaw,
	// roll) axis ordering in X/Y/Z for points 0-1. This mirrors the
	// original four-point imu summary cloud exactly so downstream mapping
	// stages that expect that layout need no changes.
	IMUTrans [4]point.Point
}

// BuildIMUTrans packs the sweep-start/end orientation and the last
// point's displacement/velocity residuals into the four-point summary
// cloud: point 0 is the starting Euler angles, point 1 the current
// (last) Euler angles, point 2 the displacement residual Δs_local, and
// point 3 the velocity residual Δv_local.
func BuildIMUTrans(startPitch, startYaw, startRoll float64,
	endPitch, endYaw, endRoll float64,
	shiftX, shiftY, shiftZ float64,
	velX, velY, velZ float64) [4]point.Point {
	return [4]point.Point{
		{X: startPitch, Y: startYaw, Z: startRoll},
		{X: endPitch, Y: endYaw, Z: endRoll},
		{X: shiftX, Y: shiftY, Z: shiftZ},
		{X: velX, Y: velY, Z: velZ},
	}
}

// FromFeatures builds an Output from a classified feature set, the full
// de-skewed sweep it was extracted from, and an already-built IMU
// transform summary.
func FromFeatures(sweepID string, ts time.Time, fullCloud []point.Point, feat feature.Features, imuTrans [4]point.Point) Output {
	return Output{
		SweepID:         sweepID,
		Timestamp:       ts,
		CornerSharp:     feat.CornerSharp,
		CornerLessSharp: feat.CornerLessSharp,
		SurfFlat:        feat.SurfFlat,
		SurfLessFlat:    feat.SurfLessFlat,
		FullCloud:       fullCloud,
		IMUTrans:        imuTrans,
	}
}
