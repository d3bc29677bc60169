package common

import "net"

var scanRanges = []*net.IPNet{
	mustParseCIDR("192.168.0.0/16"),
	mustParseCIDR("10.0.0.0/8"),
}

func mustParseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	return network
}

// IsNetworkOrBroadcast checks if an IPv4 address is the network or broadcast address of network.
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}
	ip4 := ip.To4()
	base := network.IP.To4()
	if ip4 == nil || base == nil || len(network.Mask) != net.IPv4len {
		return false
	}

	if ip4.Equal(base) {
		return true
	}

	broadcast := make(net.IP, net.IPv4len)
	copy(broadcast, base)
	for i := range broadcast {
		broadcast[i] |= ^network.Mask[i]
	}
	return ip4.Equal(broadcast)
}

// IsScanRange reports whether ip belongs to one of the private ranges that are
// swept for peers (192.168.0.0/16 and 10.0.0.0/8).
func IsScanRange(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	for _, r := range scanRanges {
		if r.Contains(ip4) {
			return true
		}
	}
	return false
}

// Subnet24 returns the /24 network containing ip, or nil for non-IPv4 input
func Subnet24(ip net.IP) *net.IPNet {
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	mask24 := net.CIDRMask(24, 32)
	return &net.IPNet{
		IP:   ip4.Mask(mask24),
		Mask: mask24,
	}
}

// ParseIPv4 parses a dotted-decimal IPv4 address. It returns nil for
// anything else, including IPv6 text.
func ParseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	return ip.To4()
}
