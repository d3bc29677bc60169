package discovery

import (
	"context"
	"net"
	"time"

	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/netinfo"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/peerfinder/pkg/rendezvous"
)

const (
	DefaultHandshakeConcurrency = 32
)

// Resolver determines the local network to sweep
type Resolver interface {
	Resolve(ctx context.Context) (*netinfo.Network, error)
}

// Handshaker confirms that a reachable host runs the application
type Handshaker interface {
	IdentifyPeer(ctx context.Context, address string) bool
}

// NeighborSource lists candidates known to be reachable without probing
type NeighborSource func(ctx context.Context, candidates []net.IP) ([]net.IP, error)

// Options configures a Discoverer. Nil collaborators are built from the
// scalar settings.
type Options struct {
	Resolver   Resolver
	Prober     pingsweep.Prober
	Handshaker Handshaker
	Neighbors  NeighborSource

	// Port is the rendezvous port handshakes connect to
	Port int
	// ProbeMethod selects the prober when Prober is nil ("ping" or "icmp")
	ProbeMethod          string
	ProbeTimeout         time.Duration
	ProbeConcurrency     int
	HandshakeTimeout     time.Duration
	HandshakeConcurrency int
	// Interfaces restricts address resolution to the named interfaces
	Interfaces []string
	// UseARP adds hosts from the neighbor table to the probe results
	UseARP bool
	// Prioritize probes likely host addresses first
	Prioritize bool
}

// DefaultOptions returns the options used by a plain discovery run
func DefaultOptions() *Options {
	return &Options{
		Port:                 rendezvous.DefaultPort,
		ProbeMethod:          pingsweep.MethodPing,
		ProbeTimeout:         pingsweep.DefaultTimeout,
		ProbeConcurrency:     pingsweep.DefaultConcurrency,
		HandshakeTimeout:     rendezvous.DefaultHandshakeTimeout,
		HandshakeConcurrency: DefaultHandshakeConcurrency,
		Prioritize:           true,
	}
}
