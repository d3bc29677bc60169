package prescan

import (
	"bytes"
	"net"
	"sort"
)

// Prioritize returns a copy of ips sorted by priority (high to low), ties
// broken by address so the order is deterministic. Non-IPv4 entries are dropped.
func Prioritize(ips []net.IP, network *net.IPNet) []net.IP {
	prioritized := make([]PrioritizedIP, 0, len(ips))
	for _, ip := range ips {
		ip4 := ip.To4()
		if ip4 == nil {
			continue
		}
		prioritized = append(prioritized, PrioritizedIP{
			IP:       ip4,
			Priority: CalculatePriority(ip4, network),
		})
	}

	sort.SliceStable(prioritized, func(i, j int) bool {
		if prioritized[i].Priority != prioritized[j].Priority {
			return prioritized[i].Priority > prioritized[j].Priority
		}
		return compareIP(prioritized[i].IP, prioritized[j].IP) < 0
	})

	result := make([]net.IP, 0, len(prioritized))
	for _, p := range prioritized {
		result = append(result, p.IP)
	}
	return result
}

// compareIP compares two IPv4 addresses byte-wise
func compareIP(ip1, ip2 net.IP) int {
	return bytes.Compare(ip1.To4(), ip2.To4())
}
