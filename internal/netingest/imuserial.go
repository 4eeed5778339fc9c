package netingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"

	"github.com/banshee-data/scan-registration/internal/frame"
	"github.com/banshee-data/scan-registration/internal/imu"
	"github.com/banshee-data/scan-registration/internal/monitoring"
	"github.com/banshee-data/scan-registration/internal/timeutil"
)

// IMUPortInterface abstracts the serial connection so tests can inject a
// mock reader without opening a real device.
type IMUPortInterface interface {
	io.ReadCloser
}

// imuLine is the line-delimited JSON record a serial IMU emits: raw
// accelerometer readings (body frame, m/s^2) and the orientation the
// device's own filter has already derived.
type imuLine struct {
	Roll, Pitch, Yaw   float64
	AccX, AccY, AccZ   float64
	TimestampUnixNanos int64
}

// OpenIMUSerialPort opens portName at the given baud rate for reading
// line-delimited IMU JSON records, following the same go.bug.st/serial
// configuration used elsewhere in this codebase for device telemetry.
func OpenIMUSerialPort(portName string, baudRate int) (IMUPortInterface, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("netingest: opening IMU serial port %s: %w", portName, err)
	}
	return port, nil
}

// ReadIMUSamples scans line-delimited JSON IMU records from r, converts
// each into a gravity-removed, axis-remapped imu.Sample whose acceleration
// is rotated into the world frame by the record's orientation, and calls sink for
// each one. It returns when ctx is canceled or r returns EOF. clock
// supplies the fallback timestamp for any record that omits
// TimestampUnixNanos.
func ReadIMUSamples(ctx context.Context, r io.Reader, clock timeutil.Clock, sink func(imu.Sample)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec imuLine
		if err := json.Unmarshal(line, &rec); err != nil {
			monitoring.Logf("netingest: malformed IMU line: %v", err)
			continue
		}

		accX, accY, accZ := imu.RemoveGravity(rec.AccX, rec.AccY, rec.AccZ, rec.Roll, rec.Pitch)
		// Rotate the gravity-free body-frame acceleration into the world
		// frame, so the ring integrates world-frame velocity and shift.
		accX, accY, accZ = frame.Apply(frame.Compose(rec.Pitch, rec.Yaw, rec.Roll), accX, accY, accZ)
		sink(imu.Sample{
			Time:  timeFromUnixNanos(rec.TimestampUnixNanos, clock),
			Roll:  rec.Roll,
			Pitch: rec.Pitch,
			Yaw:   rec.Yaw,
			AccX:  accX,
			AccY:  accY,
			AccZ:  accZ,
		})
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}

func timeFromUnixNanos(nanos int64, clock timeutil.Clock) time.Time {
	if nanos == 0 {
		return clock.Now()
	}
	return time.Unix(0, nanos)
}
