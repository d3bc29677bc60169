// Package discovery finds hosts on the local /24 network that run the
// application.
//
// A run is strictly phased: resolve the own address, build the candidate
// set, probe candidates for reachability, then perform the rendezvous
// handshake against reachable hosts only. Probes and handshakes run on
// bounded worker pools and every blocking step carries its own timeout.
//
// Example usage:
//
//	discoverer, err := discovery.New(discovery.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	peers, err := discoverer.Discover(ctx)
package discovery
