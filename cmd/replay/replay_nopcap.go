//go:build !pcap

package main

import (
	"context"
	"fmt"

	"github.com/banshee-data/scan-registration/internal/registration"
)

// replayPCAP is stubbed out unless the binary is built with -tags pcap,
// since libpcap is a system dependency we don't want to force on every
// build of this module.
func replayPCAP(_ context.Context, _ string, _ int, _ *registration.Registrar) error {
	return fmt.Errorf("replay: built without libpcap support; rebuild with -tags pcap")
}
