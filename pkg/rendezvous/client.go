package rendezvous

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/projectdiscovery/gologger"
)

// DefaultHandshakeTimeout bounds each of connect, write and read
const DefaultHandshakeTimeout = time.Second

// ContextDialer opens connections, net.Dialer satisfies it
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Client performs the initiator side of the handshake
type Client struct {
	Port    int
	Timeout time.Duration
	Dialer  ContextDialer
}

// NewClient creates a client for port with the given per-step timeout
func NewClient(port int, timeout time.Duration) *Client {
	return &Client{Port: port, Timeout: timeout}
}

// IdentifyPeer connects to address, sends the ping and reports whether the
// reply identifies the application. Every failure yields false.
func (c *Client) IdentifyPeer(ctx context.Context, address string) bool {
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	dialer := c.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: timeout}
	}

	target := net.JoinHostPort(address, strconv.Itoa(port))

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	conn, err := dialer.DialContext(dialCtx, "tcp", target)
	cancel()
	if err != nil {
		gologger.Debug().Msgf("rendezvous dial %s failed: %v", target, err)
		return false
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return false
	}
	if _, err := conn.Write(pingMessage); err != nil {
		gologger.Debug().Msgf("rendezvous write to %s failed: %v", target, err)
		return false
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return false
	}
	response, err := ReadMessage(conn, MaxMessageSize)
	if err != nil && len(response) == 0 {
		gologger.Debug().Msgf("rendezvous read from %s failed: %v", target, err)
		return false
	}

	return IsReply(response)
}

// IdentifyPeer runs a single handshake against address:port
func IdentifyPeer(ctx context.Context, address string, port int, timeout time.Duration) bool {
	return NewClient(port, timeout).IdentifyPeer(ctx, address)
}
