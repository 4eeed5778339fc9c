// Command scanregistration runs the LiDAR scan-registration pipeline: it
// listens for point-cloud packets over UDP and IMU telemetry over a serial
// port, de-skews and classifies every sweep, and publishes the resulting
// feature clouds to any registered subscriber.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/scan-registration/internal/config"
	"github.com/banshee-data/scan-registration/internal/diagnostics"
	"github.com/banshee-data/scan-registration/internal/emit"
	"github.com/banshee-data/scan-registration/internal/imu"
	"github.com/banshee-data/scan-registration/internal/ingest"
	"github.com/banshee-data/scan-registration/internal/monitoring"
	"github.com/banshee-data/scan-registration/internal/netingest"
	"github.com/banshee-data/scan-registration/internal/registration"
	"github.com/banshee-data/scan-registration/internal/timeutil"
	"github.com/banshee-data/scan-registration/internal/version"
)

func main() {
	udpAddr := flag.String("udp-addr", ":2369", "UDP address to listen for point-cloud packets on")
	rcvBuf := flag.Int("udp-rcvbuf", 8*1024*1024, "UDP socket receive buffer size in bytes")
	imuPort := flag.String("imu-port", "", "serial port to read IMU telemetry from (disabled if empty)")
	imuBaud := flag.Int("imu-baud", 115200, "IMU serial baud rate")
	configPath := flag.String("config", "", "path to a tuning config JSON file (defaults built in if empty)")
	diagDBPath := flag.String("diagnostics-db", "", "optional SQLite path to record per-sweep feature counts")
	statsInterval := flag.Duration("stats-interval", 10*time.Second, "how often to log ingestion statistics")
	flag.Parse()

	log.Printf("scanregistration %s (%s, built %s) starting", version.Version, version.GitSHA, version.BuildTime)

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub := emit.NewPublisher(32)
	defer pub.Close()

	if *diagDBPath != "" {
		store, err := diagnostics.Open(*diagDBPath)
		if err != nil {
			log.Fatalf("opening diagnostics database: %v", err)
		}
		defer store.Close()
		pub.Subscribe(store.Subscriber(func(err error) {
			monitoring.Logf("diagnostics: %v", err)
		}))
	}

	pub.Subscribe(func(out emit.Output) {
		monitoring.Logf("published sweep %s: sharp=%d lessSharp=%d flat=%d lessFlat=%d",
			out.SweepID, len(out.CornerSharp), len(out.CornerLessSharp), len(out.SurfFlat), len(out.SurfLessFlat))
	})

	reg := registration.New(cfg, pub)

	var wg sync.WaitGroup

	if *imuPort != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runIMUReader(ctx, *imuPort, *imuBaud, reg)
		}()
	} else {
		log.Printf("no -imu-port given; running without motion compensation")
	}

	stats := &netingest.PacketStats{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		runStatsLogger(ctx, stats, *statsInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := netingest.ListenUDP(ctx, *udpAddr, *rcvBuf, timeutil.RealClock{}, stats, func(raw []ingest.Raw, capturedAt time.Time) {
			reg.OnSweep(raw, capturedAt)
		}); err != nil && ctx.Err() == nil {
			log.Fatalf("udp listener failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	wg.Wait()
}

func runIMUReader(ctx context.Context, portName string, baudRate int, reg *registration.Registrar) {
	port, err := netingest.OpenIMUSerialPort(portName, baudRate)
	if err != nil {
		log.Printf("imu: %v", err)
		return
	}
	defer port.Close()

	if err := netingest.ReadIMUSamples(ctx, port, timeutil.RealClock{}, func(s imu.Sample) {
		reg.OnIMUSample(s)
	}); err != nil && ctx.Err() == nil {
		log.Printf("imu: reader stopped: %v", err)
	}
}

func runStatsLogger(ctx context.Context, stats *netingest.PacketStats, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			packets, dropped, points := stats.Snapshot()
			log.Printf("stats: packets=%d dropped=%d points=%d", packets, dropped, points)
		}
	}
}
