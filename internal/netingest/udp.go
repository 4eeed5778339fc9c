package netingest

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/banshee-data/scan-registration/internal/ingest"
	"github.com/banshee-data/scan-registration/internal/monitoring"
	"github.com/banshee-data/scan-registration/internal/timeutil"
)

// PacketStats tracks UDP ingestion counters with thread-safe access, for
// periodic status logging.
type PacketStats struct {
	mu           sync.Mutex
	packetCount  int64
	droppedCount int64
	pointCount   int64
}

// AddPacket records one received packet.
func (s *PacketStats) AddPacket() {
	s.mu.Lock()
	s.packetCount++
	s.mu.Unlock()
}

// AddDropped records one packet that failed to parse.
func (s *PacketStats) AddDropped() {
	s.mu.Lock()
	s.droppedCount++
	s.mu.Unlock()
}

// AddPoints records points successfully decoded from a packet.
func (s *PacketStats) AddPoints(n int) {
	s.mu.Lock()
	s.pointCount += int64(n)
	s.mu.Unlock()
}

// Snapshot returns the current counters.
func (s *PacketStats) Snapshot() (packets, dropped, points int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packetCount, s.droppedCount, s.pointCount
}

// PointSink receives one decoded rotation worth of points at a time, along
// with the time the first packet of that rotation arrived.
type PointSink func(raw []ingest.Raw, capturedAt time.Time)

// RotationAccumulator buffers decoded points across packets and reports a
// completed rotation once the azimuth wraps past zero. It holds no
// transport-specific state, so both the live UDP listener and the PCAP
// replay tool drive it with the same accumulation semantics.
type RotationAccumulator struct {
	rotation    []ingest.Raw
	rotationAt  time.Time
	lastAzimuth float64
}

// NewRotationAccumulator returns an empty accumulator.
func NewRotationAccumulator() *RotationAccumulator {
	return &RotationAccumulator{lastAzimuth: -1}
}

// Add decodes one packet's payload and folds it into the in-progress
// rotation. When the packet's azimuth wraps past the previous packet's,
// the now-complete rotation is returned with complete=true and the
// accumulator resets for the next one.
func (a *RotationAccumulator) Add(payload []byte, capturedAt time.Time, stats *PacketStats) (rotation []ingest.Raw, rotationStart time.Time, complete bool) {
	if stats != nil {
		stats.AddPacket()
	}

	pts, err := ParsePacket(payload)
	if err != nil {
		if stats != nil {
			stats.AddDropped()
		}
		return nil, time.Time{}, false
	}
	if stats != nil {
		stats.AddPoints(len(pts))
	}

	if len(a.rotation) == 0 {
		a.rotationAt = capturedAt
	}
	a.rotation = append(a.rotation, pts...)

	azimuth := packetAzimuth(payload)
	if a.lastAzimuth >= 0 && azimuth < a.lastAzimuth {
		rotation, rotationStart = a.rotation, a.rotationAt
		a.rotation = nil
		complete = true
	}
	a.lastAzimuth = azimuth
	return rotation, rotationStart, complete
}

// ListenUDP opens a UDP socket on addr and decodes incoming packets into
// points, accumulating them until a full rotation (azimuth wraps past
// zero) has been seen, then delivering the accumulated points to sink.
// It blocks until ctx is canceled. clock stamps each packet's arrival
// time; pass timeutil.RealClock{} in production and a timeutil.MockClock
// in tests that need deterministic rotation timestamps.
func ListenUDP(ctx context.Context, addr string, rcvBufBytes int, clock timeutil.Clock, stats *PacketStats, sink PointSink) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if udpConn, ok := conn.(*net.UDPConn); ok && rcvBufBytes > 0 {
		_ = udpConn.SetReadBuffer(rcvBufBytes)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 65536)
	acc := NewRotationAccumulator()

	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				monitoring.Logf("netingest: udp read error: %v", err)
				continue
			}
		}

		rotation, rotationStart, complete := acc.Add(buf[:n], clock.Now(), stats)
		if complete {
			sink(rotation, rotationStart)
		}
	}
}

// packetAzimuth returns the azimuth, in degrees, of the last data block in
// the packet, used to detect a full-rotation wraparound.
func packetAzimuth(payload []byte) float64 {
	if len(payload) < PacketSize {
		return -1
	}
	lastBlockOff := (BlocksPerPacket - 1) * BlockSize
	azimuthRaw := uint16(payload[lastBlockOff+2]) | uint16(payload[lastBlockOff+3])<<8
	return float64(azimuthRaw) * AzimuthResolution
}
