package common

import (
	"fmt"
	"net"

	"github.com/projectdiscovery/mapcidr"
)

// Candidates expands network into its usable host addresses, dropping the
// network and broadcast addresses and every address in exclude.
// For a /24 and a single excluded host address the result has 253 entries.
func Candidates(network *net.IPNet, exclude ...net.IP) ([]net.IP, error) {
	if network == nil {
		return nil, fmt.Errorf("nil network")
	}
	if network.IP.To4() == nil {
		return nil, fmt.Errorf("network %s is not IPv4", network.String())
	}

	cidrStr := network.String()
	ips, err := mapcidr.IPAddresses(cidrStr)
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", cidrStr, err)
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, ip := range exclude {
		if ip4 := ip.To4(); ip4 != nil {
			excluded[ip4.String()] = struct{}{}
		}
	}

	candidates := make([]net.IP, 0, len(ips))
	for _, ipStr := range ips {
		ip := ParseIPv4(ipStr)
		if ip == nil {
			continue
		}
		if IsNetworkOrBroadcast(ip, network) {
			continue
		}
		if _, skip := excluded[ip.String()]; skip {
			continue
		}
		candidates = append(candidates, ip)
	}

	return candidates, nil
}
