package imu

import (
	"math"
	"time"
)

// Capacity is the fixed size of the IMU ring buffer.
const Capacity = 200

// Ring is a fixed-capacity circular buffer of IMU samples with running
// velocity/shift integration, modeled on the original implementation's
// imuPointerLast/imuPointerFront cursor pair. last is the index of the most
// recently pushed sample; front is advanced by callers walking the ring
// looking for the sample bracketing a given timestamp.
type Ring struct {
	samples [Capacity]Sample
	count   int // number of samples ever pushed, saturating is not needed: only last/front matter
	last    int // index of the most recently written sample
	front   int // offset back from last of the sample SeekFront last found

	// MaxIntegrationGap bounds how far apart two samples may be and still
	// have their interval integrated. Samples this far apart or farther are
	// treated as a gap: integration is skipped and the new sample's
	// velocity/shift are reset to zero, matching the original
	// implementation's behavior of silently skipping the integration step
	// rather than producing a nonsensical large-dt kick.
	MaxIntegrationGap time.Duration
}

// NewRing returns a ring buffer with the default max integration gap of one
// scan period.
func NewRing() *Ring {
	return &Ring{MaxIntegrationGap: time.Duration(0.1 * float64(time.Second))}
}

func (r *Ring) next(i int) int {
	return (i + 1) % Capacity
}

// Push appends a new sample, integrating velocity and shift forward from
// the previous sample using uniform-acceleration integration over the
// elapsed interval. The ring has no notion of "full": old samples are
// simply overwritten once 200 samples have been pushed.
func (r *Ring) Push(s Sample) {
	if r.count > 0 {
		prev := r.samples[r.last]
		dt := s.Time.Sub(prev.Time)
		if dt > 0 && dt < r.MaxIntegrationGap {
			integrate(&s, prev, dt)
		} else {
			// Gap too large (or non-monotonic timestamp): skip
			// integration and reset to the implicit "starts at rest"
			// boundary condition, rather than carrying stale
			// velocity/shift forward across a gap that large.
			s.VelX, s.VelY, s.VelZ = 0, 0, 0
			s.ShiftX, s.ShiftY, s.ShiftZ = 0, 0, 0
		}
	}

	r.last = r.next(r.last)
	r.samples[r.last] = s
	r.count++
}

// integrate performs uniform-acceleration integration of s.Acc{X,Y,Z} over
// dt, starting from prev's velocity and shift:
//
//	shift += vel*dt + 0.5*acc*dt^2
//	vel   += acc*dt
func integrate(s *Sample, prev Sample, dt time.Duration) {
	dts := dt.Seconds()
	s.ShiftX = prev.ShiftX + prev.VelX*dts + 0.5*s.AccX*dts*dts
	s.ShiftY = prev.ShiftY + prev.VelY*dts + 0.5*s.AccY*dts*dts
	s.ShiftZ = prev.ShiftZ + prev.VelZ*dts + 0.5*s.AccZ*dts*dts

	s.VelX = prev.VelX + s.AccX*dts
	s.VelY = prev.VelY + s.AccY*dts
	s.VelZ = prev.VelZ + s.AccZ*dts
}

// Len returns the number of samples currently available for lookup (capped
// at Capacity).
func (r *Ring) Len() int {
	if r.count < Capacity {
		return r.count
	}
	return Capacity
}

// Latest returns the most recently pushed sample. ok is false if the ring
// is empty.
func (r *Ring) Latest() (s Sample, ok bool) {
	if r.count == 0 {
		return Sample{}, false
	}
	return r.samples[r.last], true
}

// At returns the sample n pushes before the most recent one. At(0) is
// equivalent to Latest. Returns ok=false if n is out of range.
func (r *Ring) At(n int) (s Sample, ok bool) {
	if n < 0 || n >= r.Len() {
		return Sample{}, false
	}
	idx := (r.last - n + Capacity) % Capacity
	return r.samples[idx], true
}

// SeekFront walks the ring from the newest sample toward the oldest and
// returns the newest sample at or before t, recording how many pushes back
// from the newest it sits in the front cursor. Each call starts again from
// the newest sample; the previous front value is not used as a starting
// point. If every sample is after t, the oldest sample is returned.
//
// A binary search over the ring would be the asymptotically better choice
// since the ring is effectively sorted by time, but the linear walk stays
// short when t is close to the newest samples and avoids the bookkeeping a
// circular binary search needs.
func (r *Ring) SeekFront(t time.Time) (s Sample, ok bool) {
	n := r.Len()
	if n == 0 {
		return Sample{}, false
	}

	// Walk forward from front (oldest-first order is front=newest..n-1=oldest
	// in our indexing by At, so instead walk using At(k) from newest to
	// oldest and pick the first sample not after t).
	for k := 0; k < n; k++ {
		cand, _ := r.At(k)
		if !cand.Time.After(t) {
			r.front = k
			return cand, true
		}
	}
	// Every sample is after t: return the oldest available.
	oldest, _ := r.At(n - 1)
	r.front = n - 1
	return oldest, true
}

// Interpolate returns the IMU state at time t, linearly interpolating
// orientation, velocity and shift between the two samples bracketing t. If
// t is before the oldest sample or after the newest, the nearest sample is
// returned unmodified.
func (r *Ring) Interpolate(t time.Time) (s Sample, ok bool) {
	n := r.Len()
	if n == 0 {
		return Sample{}, false
	}

	before, ok := r.SeekFront(t)
	if !ok {
		return Sample{}, false
	}
	if r.front == 0 {
		return before, true
	}
	after, ok := r.At(r.front - 1)
	if !ok {
		return before, true
	}

	span := after.Time.Sub(before.Time).Seconds()
	if span <= 0 {
		return before, true
	}
	frac := t.Sub(before.Time).Seconds() / span
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	lerp := func(a, b float64) float64 { return a + (b-a)*frac }

	// Yaw wraps at ±π: if the two bracketing samples straddle that
	// boundary, a plain lerp would interpolate the long way through 0
	// instead of the short way across the wrap. Unwrap before.Yaw into
	// after.Yaw's branch before interpolating.
	beforeYaw := before.Yaw
	if after.Yaw-before.Yaw > math.Pi {
		beforeYaw += 2 * math.Pi
	} else if after.Yaw-before.Yaw < -math.Pi {
		beforeYaw -= 2 * math.Pi
	}

	return Sample{
		Time:    t,
		Roll:    lerp(before.Roll, after.Roll),
		Pitch:   lerp(before.Pitch, after.Pitch),
		Yaw:     lerp(beforeYaw, after.Yaw),
		VelX:    lerp(before.VelX, after.VelX),
		VelY:    lerp(before.VelY, after.VelY),
		VelZ:    lerp(before.VelZ, after.VelZ),
		ShiftX:  lerp(before.ShiftX, after.ShiftX),
		ShiftY:  lerp(before.ShiftY, after.ShiftY),
		ShiftZ:  lerp(before.ShiftZ, after.ShiftZ),
	}, true
}
