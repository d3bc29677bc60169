//go:build !windows

package arp

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	osutils "github.com/projectdiscovery/utils/os"
)

// readLocalARPTable reads the local ARP table (Linux and macOS)
func readLocalARPTable(ctx context.Context) ([]Peer, error) {
	if osutils.IsLinux() {
		data, err := os.ReadFile("/proc/net/arp")
		if err != nil {
			return nil, err
		}
		return parseLinuxARPTable(string(data))
	}

	output, err := exec.CommandContext(ctx, "arp", "-a", "-n").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}
	return parseDarwinARPTable(string(output))
}
