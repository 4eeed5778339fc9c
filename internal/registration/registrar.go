// Package registration wires the IMU ring, sweep ingestor, motion
// compensator, feature extractor and sweep emitter into the single
// cooperative pipeline a process runs. OnIMUSample and OnSweep may be
// called from different goroutines (the daemon's IMU reader and its UDP
// listener); the registrar's mutex serializes them so only one runs at a
// time. Sweeps are never processed concurrently.
package registration

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/scan-registration/internal/config"
	"github.com/banshee-data/scan-registration/internal/emit"
	"github.com/banshee-data/scan-registration/internal/feature"
	"github.com/banshee-data/scan-registration/internal/imu"
	"github.com/banshee-data/scan-registration/internal/ingest"
	"github.com/banshee-data/scan-registration/internal/monitoring"
	"github.com/banshee-data/scan-registration/internal/motioncomp"
	"github.com/banshee-data/scan-registration/internal/point"
)

// Registrar is the top-level pipeline: feed it raw points and IMU samples,
// it publishes classified feature clouds.
type Registrar struct {
	mu sync.Mutex

	cfg  *config.TuningConfig
	ring *imu.Ring
	ing  *ingest.Ingestor
	comp *motioncomp.Compensator
	pub  *emit.Publisher

	sweepSeq atomic.Int64
}

// New returns a Registrar configured by cfg, publishing through pub.
func New(cfg *config.TuningConfig, pub *emit.Publisher) *Registrar {
	ring := imu.NewRing()
	return &Registrar{
		cfg:  cfg,
		ring: ring,
		ing:  ingest.NewIngestor(cfg.GetNumScans()),
		comp: motioncomp.NewCompensator(ring),
		pub:  pub,
	}
}

// OnIMUSample feeds one IMU reading into the ring buffer. IMU samples take
// priority over sweep processing: callers should deliver any IMU sample
// queued ahead of a pending sweep before calling OnSweep, mirroring the
// original single-threaded dispatch loop's preference for draining the IMU
// queue first.
func (r *Registrar) OnIMUSample(s imu.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ring.Push(s)
}

// OnSweep ingests one full rotation of raw points captured starting at
// sweepStart, de-skews them against the IMU ring, classifies them into
// feature clouds, and publishes the result. It returns false while the
// pipeline is still discarding the initial warm-up sweeps.
func (r *Registrar) OnSweep(raw []ingest.Raw, sweepStart time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sweep, ok := r.ing.Ingest(raw)
	if !ok {
		return false
	}

	scanPeriod := r.cfg.GetScanPeriodSeconds()
	sc := r.comp.BeginSweep(sweepStart)

	compensated := make([]point.Point, len(sweep.Points))
	for i, p := range sweep.Points {
		_, relTime := point.DecodeIntensity(p.Intensity)
		compensated[i] = sc.Compensate(sweepStart, p, scanPeriod, relTime)
	}

	feat := feature.Extract(compensated, sweep.ScanStartInd, sweep.ScanEndInd, r.cfg)

	startPitch, startYaw, startRoll := sc.StartOrientation()
	endSC, ok := r.latestOrientation(sweepStart, scanPeriod)
	if !ok {
		endSC = [3]float64{startPitch, startYaw, startRoll}
	}
	dvx, dvy, dvz := sc.VelocityDelta(sweepStart, scanPeriod, 1.0)
	shiftPoint := sc.Compensate(sweepStart, point.Point{}, scanPeriod, 1.0)

	imuTrans := emit.BuildIMUTrans(
		startPitch, startYaw, startRoll,
		endSC[0], endSC[1], endSC[2],
		shiftPoint.X, shiftPoint.Y, shiftPoint.Z,
		dvx, dvy, dvz,
	)

	// The sequence number keeps sweeps ordered within a single process
	// run; the UUID suffix keeps IDs unique across restarts so a
	// diagnostics store never collides two different runs' "sweep-1".
	seq := r.sweepSeq.Add(1)
	sweepID := fmt.Sprintf("sweep-%d-%s", seq, uuid.New().String()[:8])
	out := emit.FromFeatures(sweepID, sweepStart, compensated, feat, imuTrans)

	monitoring.Logf("registration: sweep %s -> sharp=%d lessSharp=%d flat=%d lessFlat=%d",
		out.SweepID, len(out.CornerSharp), len(out.CornerLessSharp), len(out.SurfFlat), len(out.SurfLessFlat))

	r.pub.Publish(out)
	return true
}

// latestOrientation reads the IMU state at the sweep's end time.
func (r *Registrar) latestOrientation(sweepStart time.Time, scanPeriod float64) (orientation [3]float64, ok bool) {
	endTime := sweepStart.Add(time.Duration(scanPeriod * float64(time.Second)))
	s, found := r.ring.Interpolate(endTime)
	if !found {
		return orientation, false
	}
	return [3]float64{s.Pitch, s.Yaw, s.Roll}, true
}
