package runner

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/peerfinder/pkg/discovery"
	"github.com/projectdiscovery/peerfinder/pkg/peerdiscovery/pingsweep"
	"github.com/projectdiscovery/peerfinder/pkg/rendezvous"
	"github.com/projectdiscovery/peerfinder/pkg/version"
	envutil "github.com/projectdiscovery/utils/env"
	fileutil "github.com/projectdiscovery/utils/file"
)

var au = aurora.NewAurora(true)

var (
	PortEnv             = envutil.GetEnvOrDefault("PEERFINDER_PORT", "")
	ProbeMethodEnv      = envutil.GetEnvOrDefault("PEERFINDER_PROBE_METHOD", pingsweep.MethodPing)
	ProbeConcurrencyEnv = envutil.GetEnvOrDefault("PEERFINDER_PROBE_CONCURRENCY", "")
	VerboseEnv          = envutil.GetEnvOrDefault("PEERFINDER_VERBOSE", "")
	ListenEnv           = envutil.GetEnvOrDefault("PEERFINDER_LISTEN", "")
)

// DefaultConfigLocation is read when it exists and no -config is given
var DefaultConfigLocation = defaultConfigLocation()

// Options contains the configuration options of a peerfinder run
type Options struct {
	ConfigFile string

	Test    goflags.StringSlice
	Resolve bool

	Port                 int
	ProbeMethod          string
	ProbeTimeout         time.Duration
	HandshakeTimeout     time.Duration
	ProbeConcurrency     int
	HandshakeConcurrency int
	ARP                  bool
	NoPrioritize         bool
	Interfaces           goflags.StringSlice
	Watch                time.Duration

	Listen            bool
	ListenOnly        bool
	MaxConnections    int
	ListenReadTimeout time.Duration

	JSON    bool
	Silent  bool
	Verbose bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`peerfinder discovers hosts on the local network running the application`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringSliceVarP(&options.Test, "test", "t", nil, "test single or multiple peers by address (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.BoolVar(&options.Resolve, "resolve", false, "print the own private address then exit"),
	)

	flagSet.CreateGroup("discovery", "Discovery",
		flagSet.IntVar(&options.Port, "port", envInt(PortEnv, rendezvous.DefaultPort), "rendezvous port"),
		flagSet.StringVarP(&options.ProbeMethod, "probe-method", "pm", ProbeMethodEnv, "reachability probe method (ping, icmp)"),
		flagSet.DurationVarP(&options.ProbeTimeout, "probe-timeout", "pt", pingsweep.DefaultTimeout, "reachability probe timeout"),
		flagSet.DurationVarP(&options.HandshakeTimeout, "handshake-timeout", "ht", rendezvous.DefaultHandshakeTimeout, "rendezvous handshake timeout"),
		flagSet.IntVarP(&options.ProbeConcurrency, "probe-concurrency", "pc", envInt(ProbeConcurrencyEnv, pingsweep.DefaultConcurrency), "number of concurrent reachability probes"),
		flagSet.IntVarP(&options.HandshakeConcurrency, "handshake-concurrency", "hc", discovery.DefaultHandshakeConcurrency, "number of concurrent handshakes"),
		flagSet.BoolVar(&options.ARP, "arp", false, "add hosts from the neighbor table to the probe results"),
		flagSet.BoolVar(&options.NoPrioritize, "no-prioritize", false, "probe candidates in address order"),
		flagSet.StringSliceVarP(&options.Interfaces, "interface", "i", nil, "interfaces to resolve the own address from (comma separated)", goflags.CommaSeparatedStringSliceOptions),
		flagSet.DurationVarP(&options.Watch, "watch", "w", 0, "repeat discovery at the given interval"),
	)

	flagSet.CreateGroup("listener", "Listener",
		flagSet.BoolVarP(&options.Listen, "listen", "l", envBool(ListenEnv, true), "answer rendezvous handshakes while running"),
		flagSet.BoolVarP(&options.ListenOnly, "listen-only", "lo", false, "only answer rendezvous handshakes until interrupted"),
		flagSet.IntVar(&options.MaxConnections, "max-conns", rendezvous.DefaultMaxConnections, "maximum concurrent listener connections"),
		flagSet.DurationVar(&options.ListenReadTimeout, "listen-read-timeout", rendezvous.DefaultReadTimeout, "listener read timeout per connection"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "write reports as json lines"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results in output"),
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", envBool(VerboseEnv, false), "show verbose output"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	flagSet.CreateGroup("config", "Config",
		flagSet.StringVar(&options.ConfigFile, "config", DefaultConfigLocation, "yaml configuration file"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.GetVersion())
		os.Exit(0)
	}

	if options.ConfigFile != "" && fileutil.FileExists(options.ConfigFile) {
		var visited []string
		flagSet.CommandLine.Visit(func(f *flag.Flag) {
			visited = append(visited, f.Name)
		})
		if err := options.loadConfigFrom(options.ConfigFile, explicitFlags(visited)); err != nil {
			gologger.Fatal().Msgf("Could not read config file %s: %s\n", options.ConfigFile, err)
		}
		options.configureOutput()
	}

	if err := options.validate(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.NewAurora(false)
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) validate() error {
	if options.Port < 1 || options.Port > 65535 {
		return fmt.Errorf("invalid port %d", options.Port)
	}
	if _, err := pingsweep.NewProber(options.ProbeMethod); err != nil {
		return err
	}
	if options.ListenOnly && (options.Resolve || len(options.Test) > 0) {
		return errors.New("listen-only can't be combined with resolve or test")
	}
	if options.Resolve && len(options.Test) > 0 {
		return errors.New("resolve can't be combined with test")
	}
	if options.Watch < 0 {
		return errors.New("watch interval can't be negative")
	}
	if options.Silent && options.Verbose {
		return errors.New("both verbose and silent mode specified")
	}
	return nil
}

// DiscoveryOptions maps the command line options onto discovery options
func (options *Options) DiscoveryOptions() *discovery.Options {
	opts := discovery.DefaultOptions()
	opts.Port = options.Port
	opts.ProbeMethod = options.ProbeMethod
	opts.ProbeTimeout = options.ProbeTimeout
	opts.ProbeConcurrency = options.ProbeConcurrency
	opts.HandshakeTimeout = options.HandshakeTimeout
	opts.HandshakeConcurrency = options.HandshakeConcurrency
	opts.Interfaces = options.Interfaces
	opts.UseARP = options.ARP
	opts.Prioritize = !options.NoPrioritize
	return opts
}

// ListenerOptions maps the command line options onto listener options
func (options *Options) ListenerOptions() rendezvous.ListenerOptions {
	opts := rendezvous.DefaultListenerOptions()
	opts.Port = options.Port
	opts.MaxConnections = options.MaxConnections
	opts.ReadTimeout = options.ListenReadTimeout
	return opts
}

func defaultConfigLocation() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "peerfinder", "config.yaml")
}

func envInt(value string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
