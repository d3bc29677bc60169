// Package pingsweep determines which hosts out of a candidate list are
// reachable, using one echo request per host.
//
// Probes run concurrently on an adaptive waitgroup capped by
// Options.Concurrency, so a /24 sweep takes roughly one timeout period
// instead of one timeout per host. A host that does not answer, or whose
// probe fails, is simply absent from the result.
//
// Two probers are available:
//   - CommandPinger: the platform ping tool (no privileges required)
//   - ICMPPinger: echo requests sent directly through golang.org/x/net/icmp
//
// Example usage:
//
//	results, err := pingsweep.ProbeHosts(ctx, candidates, &pingsweep.Options{
//		Prober:      pingsweep.NewCommandPinger(),
//		Timeout:     500 * time.Millisecond,
//		Concurrency: 64,
//	})
//
// Limitations:
//   - Hosts with ICMP disabled or firewalled will not respond
//   - Unprivileged ICMP sockets depend on net.ipv4.ping_group_range on linux
package pingsweep
