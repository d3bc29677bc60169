package prescan

import (
	"net"

	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/common"
)

// PrioritizedIP holds an IP and its priority score (0-100)
type PrioritizedIP struct {
	IP       net.IP
	Priority int
}

// CalculatePriority returns priority score (0-100) for an IPv4 address in a network.
// Higher scores mean more likely to be online.
func CalculatePriority(ip net.IP, network *net.IPNet) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return PriorityTier6
	}
	if common.IsNetworkOrBroadcast(ip4, network) {
		return PriorityTier7
	}
	// without a network only the last octet is known, which is what the tiers use anyway
	return lastOctetPriority(int(ip4[3]))
}
