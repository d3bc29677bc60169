package pingsweep

import (
	"context"
	"errors"
	"math"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
)

// CommandPinger probes hosts through the platform ping tool
type CommandPinger struct {
	// Platform is "windows", "darwin" or anything else for linux style arguments
	Platform string
	// Run executes the tool and returns its combined output
	Run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandPinger creates a pinger for the current platform
func NewCommandPinger() *CommandPinger {
	platform := "linux"
	switch {
	case osutils.IsWindows():
		platform = "windows"
	case osutils.IsOSX():
		platform = "darwin"
	}
	return &CommandPinger{
		Platform: platform,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Probe sends a single echo request and waits at most timeout for the reply
func (p *CommandPinger) Probe(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+probeGrace)
	defer cancel()

	output, err := p.Run(ctx, "ping", pingArgs(p.Platform, ip, timeout)...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// no reply
			return false, nil
		}
		return false, err
	}

	// windows ping exits 0 on "Destination host unreachable" relayed by a gateway
	if p.Platform == "windows" && !strings.Contains(string(output), "TTL=") {
		return false, nil
	}
	return true, nil
}

func pingArgs(platform string, ip net.IP, timeout time.Duration) []string {
	millis := timeout.Milliseconds()
	if millis < 1 {
		millis = 1
	}

	switch platform {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(millis, 10), ip.String()}
	case "darwin":
		return []string{"-c", "1", "-W", strconv.FormatInt(millis, 10), ip.String()}
	default:
		// iputils takes whole seconds
		seconds := int(math.Ceil(timeout.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		return []string{"-c", "1", "-W", strconv.Itoa(seconds), ip.String()}
	}
}
