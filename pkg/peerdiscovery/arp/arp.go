package arp

import (
	"context"
	"fmt"
	"net"

	"github.com/projectdiscovery/gologger"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

// Peer is a resolved neighbor table entry
type Peer struct {
	IP  net.IP
	MAC net.HardwareAddr
}

// readTable is swapped in tests
var readTable = readLocalARPTable

// Neighbors returns the resolved IPv4 entries of the local ARP table
func Neighbors(ctx context.Context) ([]Peer, error) {
	peers, err := readTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local ARP table: %w", err)
	}
	return peers, nil
}

// ReachableIn returns the candidates that have a resolved ARP entry.
// The result is a subset of candidates.
func ReachableIn(ctx context.Context, candidates []net.IP) ([]net.IP, error) {
	peers, err := Neighbors(ctx)
	if err != nil {
		return nil, err
	}

	table := mapsutil.NewSyncLockMap[string, *Peer]()
	for _, peer := range peers {
		peerCopy := peer
		_ = table.Set(peer.IP.String(), &peerCopy)
	}

	var reachable []net.IP
	for _, candidate := range candidates {
		ip4 := candidate.To4()
		if ip4 == nil {
			continue
		}
		if peer, ok := table.Get(ip4.String()); ok {
			gologger.Debug().Msgf("neighbor table lists %s at %s", ip4, peer.MAC)
			reachable = append(reachable, ip4)
		}
	}
	return reachable, nil
}

// isUnresolved reports placeholder MACs of incomplete entries
func isUnresolved(mac net.HardwareAddr) bool {
	for _, b := range mac {
		if b != 0 {
			return false
		}
	}
	return true
}
