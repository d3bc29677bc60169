package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/netinfo"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/peerfinder/pkg/rendezvous"
	mapsutil "github.com/projectdiscovery/utils/maps"
	sliceutil "github.com/projectdiscovery/utils/slice"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
)

// Report is the outcome of a discovery run
type Report struct {
	ID         string        `json:"id"`
	Interface  string        `json:"interface"`
	Address    string        `json:"address"`
	Subnet     string        `json:"subnet"`
	Candidates int           `json:"candidates"`
	Reachable  []string      `json:"reachable"`
	Peers      []string      `json:"peers"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`
}

// Discoverer runs discovery against the local network. It holds no state
// between runs and is safe for concurrent use.
type Discoverer struct {
	options    Options
	resolver   Resolver
	prober     pingsweep.Prober
	handshaker Handshaker
	neighbors  NeighborSource
}

// New creates a Discoverer, filling unset options with defaults
func New(options *Options) (*Discoverer, error) {
	opts := *DefaultOptions()
	if options != nil {
		opts = *options
	}
	if opts.Port <= 0 {
		opts.Port = rendezvous.DefaultPort
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = pingsweep.DefaultTimeout
	}
	if opts.ProbeConcurrency < 1 {
		opts.ProbeConcurrency = pingsweep.DefaultConcurrency
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = rendezvous.DefaultHandshakeTimeout
	}
	if opts.HandshakeConcurrency < 1 {
		opts.HandshakeConcurrency = DefaultHandshakeConcurrency
	}

	d := &Discoverer{
		options:    opts,
		resolver:   opts.Resolver,
		prober:     opts.Prober,
		handshaker: opts.Handshaker,
		neighbors:  opts.Neighbors,
	}
	if d.resolver == nil {
		d.resolver = netinfo.NewResolver(netinfo.DefaultProvider(), opts.Interfaces...)
	}
	if d.prober == nil {
		prober, err := pingsweep.NewProber(opts.ProbeMethod)
		if err != nil {
			return nil, err
		}
		d.prober = prober
	}
	if d.handshaker == nil {
		d.handshaker = rendezvous.NewClient(opts.Port, opts.HandshakeTimeout)
	}
	if d.neighbors == nil {
		d.neighbors = arp.ReachableIn
	}
	return d, nil
}

// ResolveOwnAddress returns the own private IPv4 address in dotted form
func (d *Discoverer) ResolveOwnAddress(ctx context.Context) (string, error) {
	network, err := d.resolver.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return network.Address.String(), nil
}

// TestPeer performs a single handshake against address. Text that is not
// an IPv4 address yields false without any network activity.
func (d *Discoverer) TestPeer(ctx context.Context, address string) bool {
	ip := common.ParseIPv4(address)
	if ip == nil {
		gologger.Debug().Msgf("not testing invalid address %q", address)
		return false
	}
	return d.handshaker.IdentifyPeer(ctx, ip.String())
}

// Discover runs discovery and returns the peer addresses
func (d *Discoverer) Discover(ctx context.Context) ([]string, error) {
	report, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}
	return report.Peers, nil
}

// Run performs a full discovery pass: resolve, probe, handshake, aggregate
func (d *Discoverer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		ID:      xid.New().String(),
		Started: time.Now(),
	}

	network, err := d.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not resolve local network: %w", err)
	}
	report.Interface = network.Interface
	report.Address = network.Address.String()
	report.Subnet = network.Subnet.String()

	candidates, err := network.Candidates()
	if err != nil {
		return nil, fmt.Errorf("could not build candidates for %s: %w", network.Subnet, err)
	}
	if d.options.Prioritize {
		candidates = prescan.Prioritize(candidates, network.Subnet)
	}
	report.Candidates = len(candidates)
	gologger.Verbose().Msgf("[%s] probing %d candidates in %s", report.ID, len(candidates), network.Subnet)

	results, err := pingsweep.ProbeHosts(ctx, candidates, &pingsweep.Options{
		Prober:      d.prober,
		Timeout:     d.options.ProbeTimeout,
		Concurrency: d.options.ProbeConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("could not probe hosts: %w", err)
	}

	reachable := make([]string, 0, len(results))
	for _, result := range results {
		reachable = append(reachable, result.IP.String())
	}
	if d.options.UseARP {
		neighbors, err := d.neighbors(ctx, candidates)
		if err != nil {
			gologger.Warning().Msgf("could not read neighbor table: %v", err)
		}
		for _, ip := range neighbors {
			reachable = append(reachable, ip.String())
		}
	}
	report.Reachable = sortAddresses(sliceutil.Dedupe(reachable))
	gologger.Verbose().Msgf("[%s] %d hosts reachable, starting handshakes", report.ID, len(report.Reachable))

	peers, err := d.handshakeAll(ctx, report.Reachable)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.Peers = sortAddresses(peers)
	report.Duration = time.Since(report.Started)

	gologger.Verbose().Msgf("[%s] found %d peers in %s", report.ID, len(report.Peers), report.Duration)
	return report, nil
}

func (d *Discoverer) handshakeAll(ctx context.Context, addresses []string) ([]string, error) {
	awg, err := syncutil.New(syncutil.WithSize(d.options.HandshakeConcurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	confirmed := mapsutil.NewSyncLockMap[string, struct{}]()

	for _, address := range addresses {
		select {
		case <-ctx.Done():
			goto done
		default:
		}

		awg.Add()
		go func(address string) {
			defer awg.Done()

			if d.handshaker.IdentifyPeer(ctx, address) {
				gologger.Verbose().Msgf("%s answered the rendezvous handshake", address)
				_ = confirmed.Set(address, struct{}{})
			}
		}(address)
	}

done:
	awg.Wait()

	peers := make([]string, 0)
	_ = confirmed.Iterate(func(address string, _ struct{}) error {
		peers = append(peers, address)
		return nil
	})
	return peers, nil
}

// sortAddresses orders dotted-decimal addresses numerically
func sortAddresses(addresses []string) []string {
	if addresses == nil {
		return []string{}
	}
	sort.SliceStable(addresses, func(i, j int) bool {
		a, b := net.ParseIP(addresses[i]).To16(), net.ParseIP(addresses[j]).To16()
		return bytes.Compare(a, b) < 0
	})
	return addresses
}
