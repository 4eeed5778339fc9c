//go:build pcap

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/banshee-data/scan-registration/internal/netingest"
	"github.com/banshee-data/scan-registration/internal/registration"
)

// replayPCAP reads every UDP packet destined for udpPort out of the PCAP
// file at path, decodes it as point-cloud traffic, and drives reg exactly
// as the live UDP listener would.
func replayPCAP(ctx context.Context, path string, udpPort int, reg *registration.Registrar) error {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return fmt.Errorf("opening pcap file: %w", err)
	}
	defer handle.Close()

	if err := handle.SetBPFFilter(fmt.Sprintf("udp port %d", udpPort)); err != nil {
		return fmt.Errorf("setting bpf filter: %w", err)
	}

	stats := &netingest.PacketStats{}
	acc := netingest.NewRotationAccumulator()
	src := gopacket.NewPacketSource(handle, handle.LinkType())

	sweepCount := 0
	for packet := range src.Packets() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		udpLayer := packet.Layer(layers.LayerTypeUDP)
		if udpLayer == nil {
			continue
		}
		payload := udpLayer.(*layers.UDP).Payload

		capturedAt := packet.Metadata().Timestamp
		rotation, rotationStart, complete := acc.Add(payload, capturedAt, stats)
		if !complete {
			continue
		}
		reg.OnSweep(rotation, rotationStart)
		sweepCount++
	}

	packets, dropped, points := stats.Snapshot()
	log.Printf("replay: %d sweeps from %d packets (%d dropped, %d points)", sweepCount, packets, dropped, points)
	return nil
}
