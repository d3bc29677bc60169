package pingsweep

import (
	"context"
	"errors"
	"net"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ips(addrs ...string) []net.IP {
	out := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, net.ParseIP(a))
	}
	return out
}

func TestProbeHostsReturnsSubsetOfCandidates(t *testing.T) {
	reachable := map[string]bool{"192.168.1.1": true, "192.168.1.20": true, "192.168.1.99": true}
	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		return reachable[ip.String()], nil
	})

	candidates := ips("192.168.1.1", "192.168.1.2", "192.168.1.20", "192.168.1.30")
	results, err := ProbeHosts(context.Background(), candidates, &Options{Prober: prober, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	got := make(map[string]struct{})
	for _, r := range results {
		got[r.IP.String()] = struct{}{}
	}
	require.Equal(t, map[string]struct{}{"192.168.1.1": {}, "192.168.1.20": {}}, got)
}

func TestProbeHostsEmptyInput(t *testing.T) {
	called := false
	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		called = true
		return true, nil
	})
	results, err := ProbeHosts(context.Background(), nil, &Options{Prober: prober})
	require.NoError(t, err)
	require.Empty(t, results)
	require.False(t, called)
}

func TestProbeHostsErrorsAreUnreachable(t *testing.T) {
	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		if ip.String() == "10.0.0.2" {
			return true, nil
		}
		return false, errors.New("connection reset by peer")
	})
	results, err := ProbeHosts(context.Background(), ips("10.0.0.1", "10.0.0.2", "10.0.0.3"), &Options{Prober: prober})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "10.0.0.2", results[0].IP.String())
}

func TestProbeHostsSkipsDuplicatesAndIPv6(t *testing.T) {
	var calls atomic.Int32
	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		calls.Add(1)
		return true, nil
	})
	results, err := ProbeHosts(context.Background(), ips("10.0.0.1", "10.0.0.1", "fd00::1"), &Options{Prober: prober})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.EqualValues(t, 1, calls.Load())
}

func TestProbeHostsRunsConcurrentlyWithinLimit(t *testing.T) {
	const limit = 8
	var inFlight, maxInFlight atomic.Int32
	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			current := maxInFlight.Load()
			if n <= current || maxInFlight.CompareAndSwap(current, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return false, nil
	})

	candidates := make([]net.IP, 0, 64)
	for i := 1; i <= 64; i++ {
		candidates = append(candidates, net.IPv4(10, 0, 0, byte(i)))
	}

	start := time.Now()
	_, err := ProbeHosts(context.Background(), candidates, &Options{Prober: prober, Concurrency: limit})
	require.NoError(t, err)

	require.LessOrEqual(t, maxInFlight.Load(), int32(limit))
	require.Greater(t, maxInFlight.Load(), int32(1))
	// 64 probes of 20ms sequentially would take 1.28s
	require.Less(t, time.Since(start), time.Second)
}

func TestProbeHostsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := ProberFunc(func(ctx context.Context, ip net.IP, timeout time.Duration) (bool, error) {
		return true, nil
	})
	results, err := ProbeHosts(ctx, ips("10.0.0.1", "10.0.0.2"), &Options{Prober: prober})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestNewProber(t *testing.T) {
	p, err := NewProber("")
	require.NoError(t, err)
	require.IsType(t, &CommandPinger{}, p)

	p, err = NewProber(MethodICMP)
	require.NoError(t, err)
	require.IsType(t, &ICMPPinger{}, p)

	_, err = NewProber("arp")
	require.Error(t, err)
}

func TestPingArgs(t *testing.T) {
	ip := net.ParseIP("192.168.1.20")
	tests := []struct {
		platform string
		timeout  time.Duration
		want     []string
	}{
		{"windows", 100 * time.Millisecond, []string{"-n", "1", "-w", "100", "192.168.1.20"}},
		{"darwin", 250 * time.Millisecond, []string{"-c", "1", "-W", "250", "192.168.1.20"}},
		{"linux", 250 * time.Millisecond, []string{"-c", "1", "-W", "1", "192.168.1.20"}},
		{"linux", 1500 * time.Millisecond, []string{"-c", "1", "-W", "2", "192.168.1.20"}},
	}
	for _, tt := range tests {
		t.Run(tt.platform+"-"+tt.timeout.String(), func(t *testing.T) {
			require.Equal(t, tt.want, pingArgs(tt.platform, ip, tt.timeout))
		})
	}
}

func TestCommandPingerProbe(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		output   string
		err      error
		want     bool
		wantErr  bool
	}{
		{name: "linux reply", platform: "linux", output: "64 bytes from 192.168.1.20: icmp_seq=1 ttl=64 time=0.41 ms", want: true},
		{name: "no reply exit status", platform: "linux", err: &exec.ExitError{}, want: false},
		{name: "windows reply", platform: "windows", output: "Reply from 192.168.1.20: bytes=32 time<1ms TTL=128", want: true},
		{name: "windows unreachable via gateway", platform: "windows", output: "Reply from 192.168.1.1: Destination host unreachable.", want: false},
		{name: "missing tool", platform: "linux", err: exec.ErrNotFound, want: false, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := &CommandPinger{
				Platform: tt.platform,
				Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
					require.Equal(t, "ping", name)
					return []byte(tt.output), tt.err
				},
			}
			got, err := pinger.Probe(context.Background(), net.ParseIP("192.168.1.20"), 100*time.Millisecond)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestICMPPingerLoopback(t *testing.T) {
	pinger := NewICMPPinger()
	ok, err := pinger.Probe(context.Background(), net.ParseIP("127.0.0.1"), time.Second)
	if err != nil {
		t.Skipf("ICMP sockets unavailable: %v", err)
	}
	if !ok {
		t.Skip("loopback does not answer echo requests")
	}
}
