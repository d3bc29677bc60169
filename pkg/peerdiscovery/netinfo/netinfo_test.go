package netinfo

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolverPicksFirstPrivateAddress(t *testing.T) {
	provider := StaticProvider{
		{Name: "lo", Up: true, Loopback: true, Addrs: []net.IP{net.ParseIP("127.0.0.1")}},
		{Name: "docker0", Up: false, Addrs: []net.IP{net.ParseIP("192.168.99.1")}},
		{Name: "tun0", Up: true, Addrs: []net.IP{net.ParseIP("172.16.4.2"), net.ParseIP("fd00::2")}},
		{Name: "eth0", Up: true, Addrs: []net.IP{net.ParseIP("fe80::1"), net.ParseIP("192.168.1.10")}},
		{Name: "eth1", Up: true, Addrs: []net.IP{net.ParseIP("10.0.0.5")}},
	}

	network, err := NewResolver(provider).Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eth0", network.Interface)
	require.Equal(t, "192.168.1.10", network.Address.String())
	require.Equal(t, "192.168.1.0/24", network.Subnet.String())
	require.Equal(t, "192.168.1", network.Prefix())

	candidates, err := network.Candidates()
	require.NoError(t, err)
	require.Len(t, candidates, 253)
}

func TestResolverInterfaceFilter(t *testing.T) {
	provider := StaticProvider{
		{Name: "eth0", Up: true, Addrs: []net.IP{net.ParseIP("192.168.1.10")}},
		{Name: "eth1", Up: true, Addrs: []net.IP{net.ParseIP("10.0.0.5")}},
	}

	network, err := NewResolver(provider, "ETH1").Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, "10.0.0.5", network.Address.String())
}

func TestResolverNoPrivateAddress(t *testing.T) {
	provider := StaticProvider{
		{Name: "lo", Up: true, Loopback: true, Addrs: []net.IP{net.ParseIP("127.0.0.1")}},
		{Name: "eth0", Up: true, Addrs: []net.IP{net.ParseIP("203.0.113.7")}},
	}

	_, err := NewResolver(provider).Resolve(context.Background())
	require.ErrorIs(t, err, ErrNoPrivateAddress)
}

type failingProvider struct{ err error }

func (f failingProvider) Interfaces(context.Context) ([]Interface, error) {
	return nil, f.err
}

func TestResolverPlatformQueryFailed(t *testing.T) {
	cause := errors.New("exec: \"ipconfig\": executable file not found")
	_, err := NewResolver(failingProvider{err: cause}).Resolve(context.Background())
	require.ErrorIs(t, err, ErrPlatformQuery)
	require.ErrorIs(t, err, cause)
}

func TestFallbackProvider(t *testing.T) {
	static := StaticProvider{{Name: "eth0", Up: true, Addrs: []net.IP{net.ParseIP("10.1.1.1")}}}

	interfaces, err := FallbackProvider{failingProvider{err: errors.New("boom")}, static}.Interfaces(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eth0", interfaces[0].Name)

	_, err = FallbackProvider{failingProvider{err: errors.New("a")}, failingProvider{err: errors.New("b")}}.Interfaces(context.Background())
	require.Error(t, err)
}

func TestCommandProviderPlatforms(t *testing.T) {
	outputs := map[string]string{
		"ipconfig": ipconfigOutput,
		"ifconfig": ifconfigDarwinOutput,
		"ip":       ipAddrJSONOutput,
	}
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		out, ok := outputs[name]
		if !ok {
			return nil, errors.New("not found")
		}
		return []byte(out), nil
	}

	tests := []struct {
		platform string
		want     string
	}{
		{PlatformWindows, "192.168.178.98"},
		{PlatformDarwin, "192.168.1.10"},
		{PlatformLinux, "192.168.0.23"},
		{PlatformUnix, "192.168.1.10"},
	}
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			provider := &CommandProvider{Platform: tt.platform, Run: run}
			network, err := NewResolver(provider).Resolve(context.Background())
			require.NoError(t, err)
			require.Equal(t, tt.want, network.Address.String())
		})
	}
}

func TestCommandProviderLinuxFallsBackToIfconfig(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name == "ip" {
			return nil, errors.New("exec: \"ip\": executable file not found in $PATH")
		}
		return []byte(ifconfigLegacyOutput), nil
	}
	interfaces, err := (&CommandProvider{Platform: PlatformLinux, Run: run}).Interfaces(context.Background())
	require.NoError(t, err)
	require.Equal(t, "eth0", interfaces[0].Name)
}

func TestCommandProviderFailure(t *testing.T) {
	run := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	_, err := NewResolver(&CommandProvider{Platform: PlatformWindows, Run: run}).Resolve(context.Background())
	require.ErrorIs(t, err, ErrPlatformQuery)
}
