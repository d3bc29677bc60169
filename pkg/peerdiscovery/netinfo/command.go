package netinfo

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/projectdiscovery/gologger"
	osutils "github.com/projectdiscovery/utils/os"
)

// Platform names understood by CommandProvider
const (
	PlatformWindows = "windows"
	PlatformDarwin  = "darwin"
	PlatformLinux   = "linux"
	PlatformUnix    = "unix"
)

// RunFunc executes a command and returns its standard output
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandProvider parses the output of the platform network configuration tool
type CommandProvider struct {
	Platform string
	Run      RunFunc
}

// NewCommandProvider creates a provider for the current platform
func NewCommandProvider() *CommandProvider {
	return &CommandProvider{
		Platform: currentPlatform(),
		Run:      runCommand,
	}
}

func currentPlatform() string {
	switch {
	case osutils.IsWindows():
		return PlatformWindows
	case osutils.IsOSX():
		return PlatformDarwin
	case osutils.IsLinux():
		return PlatformLinux
	default:
		return PlatformUnix
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Interfaces runs the platform tool and normalizes its output
func (c *CommandProvider) Interfaces(ctx context.Context) ([]Interface, error) {
	run := c.Run
	if run == nil {
		run = runCommand
	}

	switch c.Platform {
	case PlatformWindows:
		output, err := run(ctx, "ipconfig")
		if err != nil {
			return nil, fmt.Errorf("failed to execute ipconfig: %w", err)
		}
		return parseIPConfig(string(output)), nil
	case PlatformLinux:
		output, err := run(ctx, "ip", "-j", "-4", "addr", "show")
		if err == nil {
			interfaces, perr := parseIPAddrJSON(output)
			if perr == nil {
				return interfaces, nil
			}
			err = perr
		}
		// iproute2 without json support, or not installed at all
		gologger.Debug().Msgf("ip addr unavailable, falling back to ifconfig: %v", err)
		fallthrough
	default:
		output, err := run(ctx, "ifconfig")
		if err != nil {
			return nil, fmt.Errorf("failed to execute ifconfig: %w", err)
		}
		return parseIfconfig(string(output)), nil
	}
}
