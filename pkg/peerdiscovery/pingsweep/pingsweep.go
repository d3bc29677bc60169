package pingsweep

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/projectdiscovery/gologger"
	mapsutil "github.com/projectdiscovery/utils/maps"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultTimeout     = 500 * time.Millisecond
	DefaultConcurrency = 64

	// probeGrace bounds probers that overrun their own timeout (process start-up of the ping tool)
	probeGrace = 2 * time.Second
)

// Prober checks whether a single host is reachable
type Prober interface {
	Probe(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error)
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error)

// Probe calls f
func (f ProberFunc) Probe(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	return f(ctx, ip, timeout)
}

// Result is a reachable host
type Result struct {
	IP  net.IP
	RTT time.Duration
}

// Options configures a sweep
type Options struct {
	Prober      Prober
	Timeout     time.Duration
	Concurrency int
}

// DefaultOptions returns options using the platform ping tool
func DefaultOptions() *Options {
	return &Options{
		Prober:      NewCommandPinger(),
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

func (o *Options) normalize() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Prober == nil {
		out.Prober = NewCommandPinger()
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.Concurrency < 1 {
		out.Concurrency = DefaultConcurrency
	}
	return out
}

// NewProber returns the prober registered under method ("ping" or "icmp")
func NewProber(method string) (Prober, error) {
	switch method {
	case "", MethodPing:
		return NewCommandPinger(), nil
	case MethodICMP:
		return NewICMPPinger(), nil
	default:
		return nil, fmt.Errorf("unknown probe method %q (must be %s or %s)", method, MethodPing, MethodICMP)
	}
}

// Supported probe methods
const (
	MethodPing = "ping"
	MethodICMP = "icmp"
)

// ProbeHosts probes every candidate once and returns the reachable ones.
// The result is a subset of candidates in no particular order. Failed or
// timed out probes count as unreachable; the only error is a failure to
// set up the worker pool.
func ProbeHosts(ctx context.Context, candidates []net.IP, options *Options) ([]Result, error) {
	if len(candidates) == 0 {
		return []Result{}, nil
	}
	opts := options.normalize()

	awg, err := syncutil.New(syncutil.WithSize(opts.Concurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to create adaptive waitgroup: %w", err)
	}

	alive := mapsutil.NewSyncLockMap[string, *Result]()
	seen := make(map[string]struct{}, len(candidates))

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			goto done
		default:
		}

		ip := candidate.To4()
		if ip == nil {
			continue
		}
		key := ip.String()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}

		awg.Add()
		go func(target net.IP) {
			defer awg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, opts.Timeout+probeGrace)
			defer cancel()

			start := time.Now()
			ok, err := opts.Prober.Probe(probeCtx, target, opts.Timeout)
			if err != nil {
				gologger.Debug().Msgf("probe %s failed: %v", target, err)
				return
			}
			if !ok {
				return
			}
			_ = alive.Set(target.String(), &Result{IP: target, RTT: time.Since(start)})
		}(ip)
	}

done:
	awg.Wait()

	result := make([]Result, 0)
	_ = alive.Iterate(func(key string, r *Result) error {
		if r != nil {
			result = append(result, *r)
		}
		return nil
	})

	gologger.Verbose().Msgf("%d of %d hosts reachable", len(result), len(seen))
	return result, nil
}
