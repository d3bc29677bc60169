//go:build windows

package rendezvous

import "syscall"

// SO_REUSEADDR on windows allows port hijacking, keep the default exclusive bind
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
