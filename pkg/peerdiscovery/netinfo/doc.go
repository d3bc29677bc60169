// Package netinfo determines the address of this host and the /24 network
// that is swept for peers.
//
// The operating system is queried through a Provider. Three providers exist:
//   - SystemProvider: interface list from gopsutil (default)
//   - CommandProvider: output of ipconfig (windows), ip -j addr (linux) or ifconfig
//   - StaticProvider: a fixed interface list
//
// A Resolver walks the interfaces reported by its provider, skips loopback,
// down and non-IPv4 entries, and picks the first address in 192.168.0.0/16
// or 10.0.0.0/8.
//
// Example usage:
//
//	network, err := netinfo.NewResolver(netinfo.DefaultProvider()).Resolve(ctx)
//	if err != nil {
//		return err
//	}
//	candidates, err := network.Candidates()
package netinfo
