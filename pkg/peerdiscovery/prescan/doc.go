// Package prescan orders the candidates of a sweep so that the addresses most
// likely to be online are probed first. With a bounded worker pool this puts
// gateways and early DHCP leases in the first wave of probes.
//
// Priority tiers (0-100), by last octet:
//   - 100: .1, .254 (routers/gateways)
//   - 90:  .2-.5, .250-.253 (reserved infrastructure)
//   - 80:  .6-.10 (early DHCP)
//   - 70:  .50, .100, .150 (DHCP peaks)
//   - 50:  .51-.99, .101-.149, .151-.200 (main DHCP pool)
//   - 20:  .11-.49, .201-.249 (long-tail)
//   - 0:   .0, .255 (network/broadcast)
//
// Example:
//
//	ordered := prescan.Prioritize(candidates, network)
package prescan
