package netinfo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/common"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

var (
	// ErrNoPrivateAddress is returned when no interface carries an address in a scanned private range
	ErrNoPrivateAddress = errors.New("no private IPv4 address found")
	// ErrPlatformQuery is returned when the operating system could not be queried
	ErrPlatformQuery = errors.New("platform network query failed")
)

// Interface is a platform independent view of a network interface
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    []net.IP
}

// Provider reports the network interfaces of this host
type Provider interface {
	Interfaces(ctx context.Context) ([]Interface, error)
}

// StaticProvider returns a fixed interface list
type StaticProvider []Interface

// Interfaces returns the static list
func (s StaticProvider) Interfaces(ctx context.Context) ([]Interface, error) {
	return s, nil
}

// FallbackProvider returns the result of the first provider that succeeds
type FallbackProvider []Provider

// Interfaces queries the providers in order
func (f FallbackProvider) Interfaces(ctx context.Context) ([]Interface, error) {
	var errs []error
	for _, provider := range f {
		interfaces, err := provider.Interfaces(ctx)
		if err == nil {
			return interfaces, nil
		}
		gologger.Debug().Msgf("network provider %T failed: %v", provider, err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no network provider configured")
	}
	return nil, errors.Join(errs...)
}

// DefaultProvider queries gopsutil first and falls back to parsing the
// output of the platform network tool.
func DefaultProvider() Provider {
	return FallbackProvider{&SystemProvider{}, NewCommandProvider()}
}

// Network is the local network a discovery run sweeps
type Network struct {
	Interface string
	Address   net.IP
	Subnet    *net.IPNet
}

// Prefix returns the first three octets of the own address ("192.168.1")
func (n *Network) Prefix() string {
	ip4 := n.Address.To4()
	if ip4 == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", ip4[0], ip4[1], ip4[2])
}

// Candidates returns the host addresses of the subnet without the own address
func (n *Network) Candidates() ([]net.IP, error) {
	return common.Candidates(n.Subnet, n.Address)
}

func (n *Network) String() string {
	return fmt.Sprintf("%s (%s on %s)", n.Subnet, n.Address, n.Interface)
}

// Resolver picks the own address and /24 subnet from a Provider
type Resolver struct {
	provider Provider
	// names restricts the interfaces considered, empty means all
	names []string
}

// NewResolver creates a resolver. Interface names, when given, restrict the
// interfaces that are considered.
func NewResolver(provider Provider, names ...string) *Resolver {
	if provider == nil {
		provider = DefaultProvider()
	}
	return &Resolver{provider: provider, names: sliceutil.Dedupe(names)}
}

// Resolve performs a single pass over the interfaces and returns the first
// private IPv4 address found together with its /24 network.
func (r *Resolver) Resolve(ctx context.Context) (*Network, error) {
	interfaces, err := r.provider.Interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlatformQuery, err)
	}

	for _, iface := range interfaces {
		if iface.Loopback || !iface.Up {
			continue
		}
		if !r.allowed(iface.Name) {
			continue
		}
		for _, addr := range iface.Addrs {
			ip4 := addr.To4()
			if ip4 == nil || ip4.IsLoopback() {
				continue
			}
			if !common.IsScanRange(ip4) {
				continue
			}
			network := &Network{
				Interface: iface.Name,
				Address:   ip4,
				Subnet:    common.Subnet24(ip4),
			}
			gologger.Verbose().Msgf("resolved local network %s", network)
			return network, nil
		}
	}

	return nil, ErrNoPrivateAddress
}

func (r *Resolver) allowed(name string) bool {
	if len(r.names) == 0 {
		return true
	}
	for _, n := range r.names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
