package imu

import (
	"math"
	"time"
)

// Sample is a single IMU reading after gravity removal and axis remap into
// the internal frame. Orientation is stored as roll/pitch/yaw (radians, IMU
// body convention) rather than a quaternion, since every downstream
// consumer only ever needs the Euler angles to build a rotation matrix.
type Sample struct {
	Time time.Time

	Roll, Pitch, Yaw float64

	// Linear acceleration and velocity/displacement accumulated by
	// Ring.Push, in the internal world frame, with gravity removed.
	AccX, AccY, AccZ float64
	VelX, VelY, VelZ float64
	ShiftX, ShiftY, ShiftZ float64
}

// Gravity is the standard gravity constant used to remove the gravity
// component from raw accelerometer readings.
const Gravity = 9.81

// RemoveGravity subtracts the gravity component from a raw body-frame
// acceleration reading, given the current roll/pitch, and remaps the
// result into the internal frame. This mirrors the original IMU handler's
// per-axis gravity compensation: the accelerometer measures true
// acceleration plus the reaction to gravity, so the roll/pitch-projected
// gravity vector must be subtracted before the reading is usable for
// dead-reckoning.
func RemoveGravity(rawAccX, rawAccY, rawAccZ, roll, pitch float64) (accX, accY, accZ float64) {
	accX = rawAccY - math.Sin(roll)*math.Cos(pitch)*Gravity
	accY = rawAccZ - math.Cos(roll)*math.Cos(pitch)*Gravity
	accZ = rawAccX + math.Sin(pitch)*Gravity
	return
}
