package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/peerfinder/pkg/discovery"
	"github.com/projectdiscovery/peerfinder/pkg/rendezvous"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Runner contains the internal logic of the program
type Runner struct {
	options    *Options
	discoverer *discovery.Discoverer
	listener   *rendezvous.Listener
}

// NewRunner creates a new runner instance
func NewRunner(options *Options) (*Runner, error) {
	discoverer, err := discovery.New(options.DiscoveryOptions())
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not create discoverer")
	}
	return &Runner{options: options, discoverer: discoverer}, nil
}

// Run the instance
func (r *Runner) Run(ctx context.Context) error {
	if r.options.Resolve {
		address, err := r.discoverer.ResolveOwnAddress(ctx)
		if err != nil {
			return errorutil.NewWithErr(err).Msgf("could not resolve own address")
		}
		gologger.Silent().Msg(address)
		return nil
	}

	if r.options.Listen || r.options.ListenOnly {
		r.listener = rendezvous.NewListener(r.options.ListenerOptions())
		if err := r.listener.Start(ctx); err != nil {
			if r.options.ListenOnly {
				return errorutil.NewWithErr(err).Msgf("could not start listener")
			}
			gologger.Warning().Msgf("Continuing without listener: %s", err)
			r.listener = nil
		}
	}

	switch {
	case len(r.options.Test) > 0:
		return r.testPeers(ctx)
	case r.options.ListenOnly:
		gologger.Info().Msgf("Answering rendezvous handshakes, press Ctrl+C to stop")
		<-ctx.Done()
		return nil
	case r.options.Watch > 0:
		return r.watch(ctx)
	default:
		return r.discover(ctx)
	}
}

// Close the runner instance
func (r *Runner) Close() {
	if r.listener != nil {
		_ = r.listener.Close()
	}
}

func (r *Runner) testPeers(ctx context.Context) error {
	for _, address := range r.options.Test {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		isPeer := r.discoverer.TestPeer(ctx, address)
		line, err := formatTestResult(address, isPeer, r.options.JSON)
		if err != nil {
			return err
		}
		gologger.Silent().Msg(line)
	}
	return nil
}

func (r *Runner) discover(ctx context.Context) error {
	report, err := r.discoverer.Run(ctx)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not run discovery")
	}
	return r.writeReport(report)
}

func (r *Runner) watch(ctx context.Context) error {
	ticker := time.NewTicker(r.options.Watch)
	defer ticker.Stop()

	for {
		report, err := r.discoverer.Run(ctx)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			gologger.Error().Msgf("Discovery failed: %s", err)
		default:
			if err := r.writeReport(report); err != nil {
				return err
			}
		}
		if r.listener != nil {
			if recent := r.listener.RecentPeers(); len(recent) > 0 {
				gologger.Verbose().Msgf("Recently pinged by %s", strings.Join(recent, ", "))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) writeReport(report *discovery.Report) error {
	lines, err := formatReport(report, r.options.JSON)
	if err != nil {
		return err
	}
	for _, line := range lines {
		gologger.Silent().Msg(line)
	}
	gologger.Info().Msgf("Found %d peers among %d reachable hosts in %s (%s)",
		len(report.Peers), len(report.Reachable), report.Subnet, report.Duration.Round(time.Millisecond))
	return nil
}

// formatReport renders a report as one json line or one line per peer
func formatReport(report *discovery.Report, asJSON bool) ([]string, error) {
	if asJSON {
		data, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("could not marshal report: %w", err)
		}
		return []string{string(data)}, nil
	}
	lines := make([]string, 0, len(report.Peers))
	for _, peer := range report.Peers {
		lines = append(lines, au.Green(peer).String())
	}
	return lines, nil
}

type testResult struct {
	Address string `json:"address"`
	Peer    bool   `json:"peer"`
}

func formatTestResult(address string, isPeer bool, asJSON bool) (string, error) {
	if asJSON {
		data, err := json.Marshal(testResult{Address: address, Peer: isPeer})
		if err != nil {
			return "", fmt.Errorf("could not marshal result: %w", err)
		}
		return string(data), nil
	}
	if isPeer {
		return fmt.Sprintf("%s [%s]", address, au.Green("peer")), nil
	}
	return fmt.Sprintf("%s [%s]", address, au.Red("not a peer")), nil
}
