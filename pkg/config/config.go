// Package config parses server process configuration from command-line
// flags and AZURESCOPE_-prefixed environment variables.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/basicflag"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	defaultPort = 8080

	envPrefix = "AZURESCOPE_"
)

// Config holds application configuration
type Config struct {
	// DevMode relaxes gin to debug mode and allows any websocket origin.
	DevMode bool `koanf:"dev-mode"`

	// EnableScanner starts the background subscription scanner.
	EnableScanner bool `koanf:"enable-scanner"`

	// EnableMetrics exposes prometheus metrics on /metrics.
	EnableMetrics bool `koanf:"enable-metrics"`

	// Port on which the server will listen
	Port uint `koanf:"port"`

	// ListenAddr restricts the listen address; empty means all interfaces.
	ListenAddr string `koanf:"listen-addr"`

	// BaseURL is the path prefix the API is served under, e.g. /azurescope.
	BaseURL string `koanf:"base-url"`

	// AzPath is the az binary to invoke for discovery.
	AzPath string `koanf:"az-path"`

	// SnapshotDir overrides where exported snapshots are stored.
	SnapshotDir string `koanf:"snapshot-dir"`
}

// Validate checks the parsed values for shapes the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, use 1-65535", c.Port)
	}

	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "/") {
		return fmt.Errorf("base-url %q should start with a '/' or be empty", c.BaseURL)
	}

	return nil
}

// Parse loads the config from flags and the environment. Explicit flags win
// over environment variables; environment variables win over flag defaults.
func Parse(args []string) (*Config, error) {
	var config Config

	f := flagset()

	if len(args) > 0 {
		args = args[1:]
	}

	if err := f.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// AZURESCOPE_ENABLE_SCANNER=true becomes enable-scanner.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}

	// Passing k lets unset flags keep env values instead of clobbering
	// them with defaults.
	if err := k.Load(basicflag.Provider(f, ".", &basicflag.Opt{KeyMap: k}), nil); err != nil {
		return nil, fmt.Errorf("loading config from flags: %w", err)
	}

	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func flagset() *flag.FlagSet {
	f := flag.NewFlagSet("azurescope", flag.ContinueOnError)

	f.Bool("dev-mode", false, "run gin in debug mode and allow any websocket origin")
	f.Bool("enable-scanner", false, "start the background subscription scanner")
	f.Bool("enable-metrics", true, "expose prometheus metrics on /metrics")
	f.Uint("port", defaultPort, "port to listen on")
	f.String("listen-addr", "", "address to listen on; empty binds all interfaces")
	f.String("base-url", "", "base URL path to serve the API under, e.g. /azurescope")
	f.String("az-path", "az", "az binary used for discovery")
	f.String("snapshot-dir", "", "directory for exported snapshots; defaults under ~/.azurescope")

	return f
}
