// Package arp reads the operating system neighbor (ARP) table.
//
// A ping sweep makes the OS resolve the link-layer address of every
// candidate, so after the sweep the table also lists hosts that answered
// ARP but dropped the echo request. Those hosts are up and may still run
// the rendezvous listener.
//
// Sources:
//   - linux: /proc/net/arp
//   - macOS: arp -a ("? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ...")
//   - windows: arp -a (per-interface tables, dash separated MACs)
package arp
