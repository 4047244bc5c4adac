// Package config resolves the harness configuration once at process start.
//
// Layering order: built-in defaults, then an optional YAML file, then
// NETRIG_* environment variables. The resolved Config is immutable and
// passed explicitly to every component; nothing re-reads the ambient
// environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultConfigFile = ".netrig.yml"

// envPrefix is the environment variable prefix for harness configuration.
// Variables are named NETRIG_<section>_<key>, e.g. NETRIG_BACKEND_DRIVER.
const envPrefix = "NETRIG_"

// Config is the top-level NetRig configuration.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Deps    DepsConfig    `koanf:"deps"`
	Build   BuildConfig   `koanf:"build"`
	Test    TestConfig    `koanf:"test"`
	Log     LogConfig     `koanf:"log"`
}

// Load reads configuration from a YAML file, overlays NETRIG_* environment
// overrides, and merges on top of defaults. If path is empty the default
// file is tried; a missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// The default file is optional; an explicitly named one is not.
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms NETRIG_BACKEND_DRIVER -> backend.driver.
// Strips the NETRIG_ prefix, lowercases, and replaces _ with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", ".")
}

// loadDefaults seeds koanf with the base configuration layer.
func loadDefaults(k *koanf.Koanf) error {
	d := Defaults()
	defaultMap := map[string]any{
		"backend.name":    d.Backend.Name,
		"backend.driver":  d.Backend.Driver,
		"backend.profile": d.Backend.Profile,
		"backend.nics":    d.Backend.NICs,
		"deps.prefix":     d.Deps.Prefix,
		"deps.pins":       d.Deps.Pins,
		"deps.packetlib":  d.Deps.PacketLib,
		"deps.bypass":     d.Deps.Bypass,
		"build.source":    d.Build.Source,
		"build.libpath":   d.Build.LibPath,
		"build.jobs":      d.Build.Jobs,
		"test.name":       d.Test.Name,
		"test.role":       d.Test.Role,
		"test.timeout":    d.Test.Timeout,
		"test.mtu":        d.Test.MTU,
		"test.mss":        d.Test.MSS,
		"test.bindir":     d.Test.BinDir,
		"test.delay":      d.Test.Delay,
		"test.config":     d.Test.Config,
		"log.level":       d.Log.Level,
		"log.format":      d.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// Defaults returns a Config populated with the documented defaults.
func Defaults() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Config{
		Backend: BackendConfig{
			Profile: "release",
		},
		Deps: DepsConfig{
			Prefix:    "/usr/local/netrig",
			Pins:      "netrig-deps.toml",
			PacketLib: "third_party/packet-library",
			Bypass:    "third_party/bypass-stack",
		},
		Build: BuildConfig{
			Source: wd,
			Jobs:   0, // 0 lets the build tool pick
		},
		Test: TestConfig{
			Name:    "tcp-echo",
			Role:    "server",
			Timeout: 120,
			MTU:     1500,
			MSS:     1460,
			BinDir:  "bin/tests",
			Delay:   500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
