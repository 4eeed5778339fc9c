// Package motioncomp removes the motion distortion a sweep accumulates
// while the sensor (and the platform it rides on) moves during the scan.
// Every point is re-expressed in the coordinate frame of the sweep's first
// point, using the IMU ring's orientation, velocity and shift history. It
// is the only package allowed to combine frame and imu. It never pushes
// samples into the ring it reads from; its lookups do move the ring's
// front search cursor.
package motioncomp

import (
	"time"

	"github.com/banshee-data/scan-registration/internal/frame"
	"github.com/banshee-data/scan-registration/internal/imu"
	"github.com/banshee-data/scan-registration/internal/point"
)

// Compensator de-skews points against a single ring of IMU samples.
type Compensator struct {
	ring *imu.Ring
}

// NewCompensator returns a Compensator reading from ring.
func NewCompensator(ring *imu.Ring) *Compensator {
	return &Compensator{ring: ring}
}

// SweepContext captures the IMU state at a sweep's first point. Everything
// else in the sweep is de-skewed relative to this snapshot, so it is
// captured once per sweep rather than re-derived per point.
type SweepContext struct {
	comp  *Compensator
	start imu.Sample
	valid bool
}

// BeginSweep snapshots the IMU state at startTime for use by
// SweepContext.Compensate. valid is false if the IMU ring has no data yet,
// in which case Compensate is a no-op passthrough.
func (c *Compensator) BeginSweep(startTime time.Time) *SweepContext {
	s, ok := c.ring.Interpolate(startTime)
	return &SweepContext{comp: c, start: s, valid: ok}
}

// Compensate re-expresses p, captured scanPeriod*relTime seconds after the
// sweep's start, in the coordinate frame of the sweep's first point.
func (sc *SweepContext) Compensate(sweepStart time.Time, p point.Point, scanPeriod, relTime float64) point.Point {
	if !sc.valid {
		return p
	}

	t := sweepStart.Add(time.Duration(relTime * scanPeriod * float64(time.Second)))
	cur, ok := sc.comp.ring.Interpolate(t)
	if !ok {
		return p
	}

	dt := t.Sub(sc.start.Time).Seconds()

	// Displacement accumulated between the start and current IMU state, in
	// the world frame, with the start's constant-velocity drift removed.
	dsWorldX := cur.ShiftX - sc.start.ShiftX - sc.start.VelX*dt
	dsWorldY := cur.ShiftY - sc.start.ShiftY - sc.start.VelY*dt
	dsWorldZ := cur.ShiftZ - sc.start.ShiftZ - sc.start.VelZ*dt

	startInv := frame.ComposeInverse(sc.start.Pitch, sc.start.Yaw, sc.start.Roll)
	dsLocalX, dsLocalY, dsLocalZ := frame.Apply(startInv, dsWorldX, dsWorldY, dsWorldZ)

	// Rotate the point from its capture-time orientation into the world
	// frame, then back into the start orientation, and add the
	// accumulated displacement.
	curRot := frame.Compose(cur.Pitch, cur.Yaw, cur.Roll)
	worldX, worldY, worldZ := frame.Apply(curRot, p.X, p.Y, p.Z)
	localX, localY, localZ := frame.Apply(startInv, worldX, worldY, worldZ)

	return point.Point{
		X:         localX + dsLocalX,
		Y:         localY + dsLocalY,
		Z:         localZ + dsLocalZ,
		Intensity: p.Intensity,
	}
}

// VelocityDelta returns the sweep-start-frame velocity difference between
// the start sample and the sample at sweepStart+scanPeriod*relTime. This
// feeds the four-point imuTrans summary the sweep emitter produces.
func (sc *SweepContext) VelocityDelta(sweepStart time.Time, scanPeriod, relTime float64) (dvx, dvy, dvz float64) {
	if !sc.valid {
		return 0, 0, 0
	}
	t := sweepStart.Add(time.Duration(relTime * scanPeriod * float64(time.Second)))
	cur, ok := sc.comp.ring.Interpolate(t)
	if !ok {
		return 0, 0, 0
	}
	dWorldX := cur.VelX - sc.start.VelX
	dWorldY := cur.VelY - sc.start.VelY
	dWorldZ := cur.VelZ - sc.start.VelZ

	startInv := frame.ComposeInverse(sc.start.Pitch, sc.start.Yaw, sc.start.Roll)
	return frame.Apply(startInv, dWorldX, dWorldY, dWorldZ)
}

// StartOrientation returns the sweep-start orientation snapshot, used to
// populate the imuTrans summary's first/second points.
func (sc *SweepContext) StartOrientation() (pitch, yaw, roll float64) {
	return sc.start.Pitch, sc.start.Yaw, sc.start.Roll
}
