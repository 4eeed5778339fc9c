// Package frame implements the sensor-to-internal axis remap and the
// rotation composition used throughout motion compensation. The sensor
// frame is x-forward, y-left, z-up; the internal frame used by every
// downstream stage is z-forward, x-left, y-up, matching the convention the
// feature extractor and sweep emitter expect. It has no dependency on
// ingest, motioncomp, or feature — those packages import frame, never the
// other way around.
package frame

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RemapSensorToInternal converts a point from the sensor frame into the
// internal frame: internal.x = sensor.y, internal.y = sensor.z,
// internal.z = sensor.x.
func RemapSensorToInternal(x, y, z float64) (ix, iy, iz float64) {
	return y, z, x
}

// RemapInternalToSensor is the inverse of RemapSensorToInternal.
func RemapInternalToSensor(ix, iy, iz float64) (x, y, z float64) {
	return iz, ix, iy
}

// Rx returns the rotation matrix for a rotation of angle (radians) about
// the X axis.
func Rx(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// Ry returns the rotation matrix for a rotation of angle (radians) about
// the Y axis.
func Ry(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// Rz returns the rotation matrix for a rotation of angle (radians) about
// the Z axis.
func Rz(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// Compose returns R = Ry(yaw) * Rx(pitch) * Rz(roll), the rotation
// convention used to carry a point from the IMU's body frame into the
// world frame.
func Compose(pitch, yaw, roll float64) *mat.Dense {
	var tmp, r mat.Dense
	tmp.Mul(Rx(pitch), Rz(roll))
	r.Mul(Ry(yaw), &tmp)
	return &r
}

// ComposeInverse returns Rz(-roll) * Rx(-pitch) * Ry(-yaw), the inverse of
// Compose, used to carry a world-frame vector back into the body frame.
func ComposeInverse(pitch, yaw, roll float64) *mat.Dense {
	var tmp, r mat.Dense
	tmp.Mul(Rx(-pitch), Ry(-yaw))
	r.Mul(Rz(-roll), &tmp)
	return &r
}

// Apply rotates (x, y, z) by R and returns the result.
func Apply(R *mat.Dense, x, y, z float64) (rx, ry, rz float64) {
	v := mat.NewVecDense(3, []float64{x, y, z})
	var out mat.VecDense
	out.MulVec(R, v)
	return out.AtVec(0), out.AtVec(1), out.AtVec(2)
}
