package pingsweep

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	osutils "github.com/projectdiscovery/utils/os"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var echoSeq atomic.Uint32

// ICMPPinger sends echo requests without spawning a process
type ICMPPinger struct {
	// Privileged uses a raw ip4:icmp socket instead of an unprivileged datagram socket
	Privileged bool
}

// NewICMPPinger picks a raw socket when running as root or on windows,
// where datagram ICMP sockets are not available.
func NewICMPPinger() *ICMPPinger {
	return &ICMPPinger{Privileged: osutils.IsWindows() || os.Geteuid() == 0}
}

// Probe sends one echo request and waits for the matching reply
func (p *ICMPPinger) Probe(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return false, fmt.Errorf("%s is not an IPv4 address", ip)
	}

	network := "udp4"
	if p.Privileged {
		network = "ip4:icmp"
	}
	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		return false, fmt.Errorf("failed to open ICMP socket: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	id := os.Getpid() & 0xffff
	seq := int(echoSeq.Add(1) & 0xffff)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("PEERFINDER-PROBE"),
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return false, fmt.Errorf("failed to marshal ICMP message: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false, err
	}

	var dst net.Addr = &net.UDPAddr{IP: ip4}
	if p.Privileged {
		dst = &net.IPAddr{IP: ip4}
	}
	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		return false, err
	}

	reply := make([]byte, 1500)
	for {
		if ctx.Err() != nil {
			return false, nil
		}

		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return false, nil
			}
			return false, err
		}

		rm, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), reply[:n])
		if err != nil {
			continue
		}
		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		// the kernel rewrites the id of datagram sockets
		if p.Privileged && echo.ID != id {
			continue
		}
		if !peerIP(peer).Equal(ip4) {
			continue
		}
		return true, nil
	}
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPAddr:
		return a.IP
	case *net.UDPAddr:
		return a.IP
	default:
		return nil
	}
}
