package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/projectdiscovery/peerfinder/pkg/discovery"
	"github.com/stretchr/testify/require"
)

func defaultTestOptions() *Options {
	return &Options{
		Port:                 54321,
		ProbeMethod:          "ping",
		ProbeTimeout:         500 * time.Millisecond,
		HandshakeTimeout:     time.Second,
		ProbeConcurrency:     64,
		HandshakeConcurrency: 32,
		Listen:               true,
		MaxConnections:       64,
		ListenReadTimeout:    2 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "defaults", modify: func(o *Options) {}},
		{name: "port zero", modify: func(o *Options) { o.Port = 0 }, wantErr: true},
		{name: "port too large", modify: func(o *Options) { o.Port = 70000 }, wantErr: true},
		{name: "unknown probe method", modify: func(o *Options) { o.ProbeMethod = "arping" }, wantErr: true},
		{name: "icmp probe method", modify: func(o *Options) { o.ProbeMethod = "icmp" }},
		{name: "listen only with test", modify: func(o *Options) { o.ListenOnly = true; o.Test = []string{"192.168.1.2"} }, wantErr: true},
		{name: "resolve with test", modify: func(o *Options) { o.Resolve = true; o.Test = []string{"192.168.1.2"} }, wantErr: true},
		{name: "negative watch", modify: func(o *Options) { o.Watch = -time.Second }, wantErr: true},
		{name: "silent and verbose", modify: func(o *Options) { o.Silent = true; o.Verbose = true }, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			options := defaultTestOptions()
			tc.modify(options)
			err := options.validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	port := 60000
	method := "icmp"
	arp := true
	watch := 30 * time.Second

	options := defaultTestOptions()
	options.ProbeMethod = "ping"
	options.merge(&fileConfig{
		Port:        &port,
		ProbeMethod: &method,
		ARP:         &arp,
		Watch:       &watch,
		Interfaces:  []string{"eth0"},
	}, explicitFlags([]string{"pm", "port"}))

	require.Equal(t, 54321, options.Port)
	require.Equal(t, "ping", options.ProbeMethod)
	require.True(t, options.ARP)
	require.Equal(t, 30*time.Second, options.Watch)
	require.Equal(t, []string{"eth0"}, []string(options.Interfaces))
}

func TestExplicitFlags(t *testing.T) {
	explicit := explicitFlags([]string{"v", "port", "hc"})
	require.Contains(t, explicit, "verbose")
	require.Contains(t, explicit, "port")
	require.Contains(t, explicit, "handshake-concurrency")
	require.NotContains(t, explicit, "v")
}

func TestLoadConfigFrom(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 40000\nprobe-timeout: 250ms\nno-prioritize: true\ninterface:\n  - wlan0\n"
	require.NoError(t, os.WriteFile(location, []byte(content), 0o600))

	options := defaultTestOptions()
	require.NoError(t, options.loadConfigFrom(location, nil))
	require.Equal(t, 40000, options.Port)
	require.Equal(t, 250*time.Millisecond, options.ProbeTimeout)
	require.True(t, options.NoPrioritize)
	require.Equal(t, []string{"wlan0"}, []string(options.Interfaces))
	require.Equal(t, "ping", options.ProbeMethod)
}

func TestDiscoveryOptions(t *testing.T) {
	options := defaultTestOptions()
	options.Port = 40000
	options.ARP = true
	options.NoPrioritize = true
	options.Interfaces = []string{"eth1"}

	opts := options.DiscoveryOptions()
	require.Equal(t, 40000, opts.Port)
	require.True(t, opts.UseARP)
	require.False(t, opts.Prioritize)
	require.Equal(t, []string{"eth1"}, opts.Interfaces)

	listener := options.ListenerOptions()
	require.Equal(t, 40000, listener.Port)
	require.Equal(t, 64, listener.MaxConnections)
}

func TestEnvParsing(t *testing.T) {
	require.Equal(t, 1234, envInt("1234", 1))
	require.Equal(t, 7, envInt("", 7))
	require.Equal(t, 7, envInt("-3", 7))
	require.True(t, envBool("TRUE", false))
	require.False(t, envBool("0", true))
	require.True(t, envBool("maybe", true))
}

func TestFormatReport(t *testing.T) {
	au = aurora.NewAurora(false)
	report := &discovery.Report{
		ID:        "cn1234",
		Subnet:    "192.168.1.0/24",
		Reachable: []string{"192.168.1.1", "192.168.1.20"},
		Peers:     []string{"192.168.1.20"},
	}

	lines, err := formatReport(report, false)
	require.NoError(t, err)
	require.Equal(t, []string{"192.168.1.20"}, lines)

	lines, err = formatReport(report, true)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	var decoded discovery.Report
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	require.Equal(t, report.Peers, decoded.Peers)
	require.Equal(t, report.ID, decoded.ID)
}

func TestFormatTestResult(t *testing.T) {
	au = aurora.NewAurora(false)

	line, err := formatTestResult("192.168.1.20", true, false)
	require.NoError(t, err)
	require.Equal(t, "192.168.1.20 [peer]", line)

	line, err = formatTestResult("192.168.1.30", false, false)
	require.NoError(t, err)
	require.Equal(t, "192.168.1.30 [not a peer]", line)

	line, err = formatTestResult("192.168.1.30", false, true)
	require.NoError(t, err)
	require.JSONEq(t, `{"address":"192.168.1.30","peer":false}`, line)
}
