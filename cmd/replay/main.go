// Command replay feeds a previously captured PCAP file of point-cloud UDP
// traffic through the registration pipeline, for offline tuning and
// regression testing without a live sensor. Replaying requires a build
// with -tags pcap and libpcap (see replay_pcap.go); without that tag the
// command builds but its replay step returns an error.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/scan-registration/internal/config"
	"github.com/banshee-data/scan-registration/internal/emit"
	"github.com/banshee-data/scan-registration/internal/monitoring"
	"github.com/banshee-data/scan-registration/internal/registration"
)

func main() {
	pcapFile := flag.String("pcap", "", "path to a PCAP file of recorded point-cloud UDP traffic")
	udpPort := flag.Int("udp-port", 2369, "UDP port the recorded traffic was sent to")
	flag.Parse()

	if *pcapFile == "" {
		log.Fatal("usage: replay -pcap <file> [-udp-port 2369]")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := emit.NewPublisher(32)
	defer pub.Close()
	pub.Subscribe(func(out emit.Output) {
		monitoring.Logf("replay: published sweep %s (sharp=%d lessSharp=%d flat=%d lessFlat=%d)",
			out.SweepID, len(out.CornerSharp), len(out.CornerLessSharp), len(out.SurfFlat), len(out.SurfLessFlat))
	})

	reg := registration.New(config.EmptyTuningConfig(), pub)

	if err := replayPCAP(ctx, *pcapFile, *udpPort, reg); err != nil {
		log.Fatalf("replay failed: %v", err)
	}
}
