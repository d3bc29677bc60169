package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/projectdiscovery/gcache"
	"github.com/projectdiscovery/gologger"
)

const (
	DefaultMaxConnections = 64
	DefaultReadTimeout    = 2 * time.Second

	recentPeersSize   = 1024
	recentPeersExpiry = 10 * time.Minute
)

var (
	// ErrBind is returned when the listening socket cannot be created
	ErrBind = errors.New("could not bind rendezvous listener")
	// ErrListenerStarted is returned by Start on a listener that was already started
	ErrListenerStarted = errors.New("rendezvous listener already started")
)

// ListenerOptions configures a Listener
type ListenerOptions struct {
	// Host to bind, empty means all interfaces
	Host string
	// Port to bind, 0 picks an ephemeral port
	Port int
	// MaxConnections caps concurrently handled connections, extra ones are closed
	MaxConnections int
	// ReadTimeout bounds how long a connection may take to send its message
	ReadTimeout time.Duration
}

// DefaultListenerOptions returns options for the well-known port
func DefaultListenerOptions() ListenerOptions {
	return ListenerOptions{
		Port:           DefaultPort,
		MaxConnections: DefaultMaxConnections,
		ReadTimeout:    DefaultReadTimeout,
	}
}

// Listener answers handshake requests until closed.
//
// Lifecycle: NewListener (idle) -> Start (listening) -> Close (closed).
// Close waits for in-flight connections to be handled.
type Listener struct {
	options ListenerOptions

	mu         sync.Mutex
	ln         net.Listener
	cancel     context.CancelFunc
	started    bool
	closed     bool
	wg         sync.WaitGroup
	limiter    chan struct{}
	initiators gcache.Cache[string, time.Time]
}

// NewListener creates an idle listener
func NewListener(options ListenerOptions) *Listener {
	if options.MaxConnections <= 0 {
		options.MaxConnections = DefaultMaxConnections
	}
	if options.ReadTimeout <= 0 {
		options.ReadTimeout = DefaultReadTimeout
	}
	if options.Port < 0 || options.Port > 65535 {
		options.Port = DefaultPort
	}
	return &Listener{
		options: options,
		limiter: make(chan struct{}, options.MaxConnections),
		initiators: gcache.New[string, time.Time](recentPeersSize).
			LRU().
			Expiration(recentPeersExpiry).
			Build(),
	}
}

// Start binds the socket and serves connections in the background. The
// listener stops when ctx is cancelled or Close is called.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return ErrListenerStarted
	}

	address := net.JoinHostPort(l.options.Host, strconv.Itoa(l.options.Port))
	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(ctx, "tcp4", address)
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrBind, address, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	l.ln = ln
	l.cancel = cancel
	l.started = true

	gologger.Info().Msgf("Rendezvous listener started on %s", ln.Addr())

	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		<-ctx.Done()
		_ = ln.Close()
	}()
	go func() {
		defer l.wg.Done()
		l.acceptLoop(ctx, ln)
	}()
	return nil
}

// Addr returns the bound address or nil if the listener is not running
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ln == nil || l.closed {
		return nil
	}
	return l.ln.Addr()
}

// Close stops accepting, closes the socket and waits for handlers to return.
// It is safe to call more than once.
func (l *Listener) Close() error {
	l.mu.Lock()
	if !l.started || l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.cancel()
	l.mu.Unlock()

	l.wg.Wait()
	return nil
}

// RecentPeers returns the addresses that sent a valid handshake recently
func (l *Listener) RecentPeers() []string {
	return l.initiators.Keys(true)
}

func (l *Listener) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				gologger.Verbose().Msgf("Rendezvous listener on %s stopped", ln.Addr())
				return
			}
			gologger.Debug().Msgf("rendezvous accept failed: %v", err)
			continue
		}

		select {
		case l.limiter <- struct{}{}:
			l.wg.Add(1)
			go func() {
				defer func() {
					<-l.limiter
					l.wg.Done()
				}()
				l.handle(conn)
			}()
		default:
			gologger.Debug().Msgf("too many rendezvous connections, rejecting %s", conn.RemoteAddr())
			_ = conn.Close()
		}
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	remote := conn.RemoteAddr().String()
	if err := conn.SetReadDeadline(time.Now().Add(l.options.ReadTimeout)); err != nil {
		return
	}
	data, err := ReadMessage(conn, MaxMessageSize)
	if err != nil && len(data) == 0 {
		gologger.Debug().Msgf("rendezvous read from %s failed: %v", remote, err)
		return
	}
	if !IsPing(data) {
		gologger.Debug().Msgf("ignoring unexpected rendezvous message from %s", remote)
		return
	}

	if err := conn.SetWriteDeadline(time.Now().Add(l.options.ReadTimeout)); err != nil {
		return
	}
	if _, err := conn.Write(replyMessage); err != nil {
		gologger.Debug().Msgf("rendezvous reply to %s failed: %v", remote, err)
		return
	}

	if host, _, err := net.SplitHostPort(remote); err == nil {
		_ = l.initiators.Set(host, time.Now())
	}
	gologger.Verbose().Msgf("Answered rendezvous ping from %s", remote)
}
