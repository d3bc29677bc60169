package runner

import (
	"time"

	fileutil "github.com/projectdiscovery/utils/file"
)

// fileConfig mirrors the flags that may be set from a yaml file. Keys use
// the long flag names.
type fileConfig struct {
	Port                 *int           `yaml:"port"`
	ProbeMethod          *string        `yaml:"probe-method"`
	ProbeTimeout         *time.Duration `yaml:"probe-timeout"`
	HandshakeTimeout     *time.Duration `yaml:"handshake-timeout"`
	ProbeConcurrency     *int           `yaml:"probe-concurrency"`
	HandshakeConcurrency *int           `yaml:"handshake-concurrency"`
	ARP                  *bool          `yaml:"arp"`
	NoPrioritize         *bool          `yaml:"no-prioritize"`
	Interfaces           []string       `yaml:"interface"`
	Watch                *time.Duration `yaml:"watch"`
	Listen               *bool          `yaml:"listen"`
	MaxConnections       *int           `yaml:"max-conns"`
	ListenReadTimeout    *time.Duration `yaml:"listen-read-timeout"`
	JSON                 *bool          `yaml:"json"`
	Verbose              *bool          `yaml:"verbose"`
	NoColor              *bool          `yaml:"no-color"`
}

// shortFlags maps short flag names to their long form
var shortFlags = map[string]string{
	"t":  "test",
	"pm": "probe-method",
	"pt": "probe-timeout",
	"ht": "handshake-timeout",
	"pc": "probe-concurrency",
	"hc": "handshake-concurrency",
	"i":  "interface",
	"w":  "watch",
	"l":  "listen",
	"lo": "listen-only",
	"j":  "json",
	"v":  "verbose",
	"nc": "no-color",
}

// explicitFlags returns the long names of the flags given on the command line
func explicitFlags(names []string) map[string]struct{} {
	explicit := make(map[string]struct{}, len(names))
	for _, name := range names {
		if long, ok := shortFlags[name]; ok {
			name = long
		}
		explicit[name] = struct{}{}
	}
	return explicit
}

// loadConfigFrom applies the yaml file at location. Flags named in explicit
// were given on the command line and keep their value.
func (options *Options) loadConfigFrom(location string, explicit map[string]struct{}) error {
	var cfg fileConfig
	if err := fileutil.Unmarshal(fileutil.YAML, []byte(location), &cfg); err != nil {
		return err
	}
	options.merge(&cfg, explicit)
	return nil
}

func (options *Options) merge(cfg *fileConfig, explicit map[string]struct{}) {
	unset := func(name string) bool {
		_, ok := explicit[name]
		return !ok
	}

	setInt := func(name string, dst *int, src *int) {
		if src != nil && unset(name) {
			*dst = *src
		}
	}
	setBool := func(name string, dst *bool, src *bool) {
		if src != nil && unset(name) {
			*dst = *src
		}
	}
	setDuration := func(name string, dst *time.Duration, src *time.Duration) {
		if src != nil && unset(name) {
			*dst = *src
		}
	}

	setInt("port", &options.Port, cfg.Port)
	if cfg.ProbeMethod != nil && unset("probe-method") {
		options.ProbeMethod = *cfg.ProbeMethod
	}
	setDuration("probe-timeout", &options.ProbeTimeout, cfg.ProbeTimeout)
	setDuration("handshake-timeout", &options.HandshakeTimeout, cfg.HandshakeTimeout)
	setInt("probe-concurrency", &options.ProbeConcurrency, cfg.ProbeConcurrency)
	setInt("handshake-concurrency", &options.HandshakeConcurrency, cfg.HandshakeConcurrency)
	setBool("arp", &options.ARP, cfg.ARP)
	setBool("no-prioritize", &options.NoPrioritize, cfg.NoPrioritize)
	if len(cfg.Interfaces) > 0 && unset("interface") {
		options.Interfaces = cfg.Interfaces
	}
	setDuration("watch", &options.Watch, cfg.Watch)
	setBool("listen", &options.Listen, cfg.Listen)
	setInt("max-conns", &options.MaxConnections, cfg.MaxConnections)
	setDuration("listen-read-timeout", &options.ListenReadTimeout, cfg.ListenReadTimeout)
	setBool("json", &options.JSON, cfg.JSON)
	setBool("verbose", &options.Verbose, cfg.Verbose)
	setBool("no-color", &options.NoColor, cfg.NoColor)
}
