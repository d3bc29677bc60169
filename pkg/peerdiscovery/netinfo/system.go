package netinfo

import (
	"context"
	"net"

	sliceutil "github.com/projectdiscovery/utils/slice"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// SystemProvider lists interfaces through gopsutil
type SystemProvider struct{}

// Interfaces returns all interfaces known to the operating system
func (s *SystemProvider) Interfaces(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	interfaces := make([]Interface, 0, len(stats))
	for _, stat := range stats {
		iface := Interface{
			Name:     stat.Name,
			Up:       sliceutil.Contains(stat.Flags, "up"),
			Loopback: sliceutil.Contains(stat.Flags, "loopback"),
		}
		for _, addr := range stat.Addrs {
			// gopsutil reports addresses in CIDR notation
			ip, _, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				ip = net.ParseIP(addr.Addr)
			}
			if ip == nil {
				continue
			}
			iface.Addrs = append(iface.Addrs, ip)
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces, nil
}
