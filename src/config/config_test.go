package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sofmeright/netrig/src/backend"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no stray .netrig.yml is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Backend.Profile != "release" {
		t.Errorf("profile = %q, want release", cfg.Backend.Profile)
	}
	if cfg.Test.Name != "tcp-echo" || cfg.Test.Role != "server" {
		t.Errorf("test defaults = %q/%q", cfg.Test.Name, cfg.Test.Role)
	}
	if cfg.Test.Timeout != 120 {
		t.Errorf("timeout = %d, want 120", cfg.Test.Timeout)
	}
	if cfg.Test.MTU != 1500 || cfg.Test.MSS != 1460 {
		t.Errorf("mtu/mss = %d/%d, want 1500/1460", cfg.Test.MTU, cfg.Test.MSS)
	}
	if cfg.Deps.Prefix != "/usr/local/netrig" {
		t.Errorf("prefix = %q", cfg.Deps.Prefix)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "harness.yml")
	content := `
backend:
  name: kernel-bypass
  driver: mlx4
  profile: debug
test:
  timeout: 30
  role: client
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Name != "kernel-bypass" || cfg.Backend.Driver != "mlx4" {
		t.Errorf("backend = %q/%q", cfg.Backend.Name, cfg.Backend.Driver)
	}
	if cfg.Backend.Profile != "debug" {
		t.Errorf("profile = %q, want debug", cfg.Backend.Profile)
	}
	if cfg.Test.Timeout != 30 || cfg.Test.Role != "client" {
		t.Errorf("test = %d/%q", cfg.Test.Timeout, cfg.Test.Role)
	}
	// Untouched keys keep their defaults.
	if cfg.Test.MTU != 1500 {
		t.Errorf("mtu = %d, want default 1500", cfg.Test.MTU)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "harness.yml")
	if err := os.WriteFile(path, []byte("test:\n  timeout: 30\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("NETRIG_TEST_TIMEOUT", "45")
	t.Setenv("NETRIG_BACKEND_DRIVER", "mlx5")
	t.Setenv("NETRIG_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Test.Timeout != 45 {
		t.Errorf("timeout = %d, want env value 45", cfg.Test.Timeout)
	}
	if cfg.Backend.Driver != "mlx5" {
		t.Errorf("driver = %q, want mlx5", cfg.Backend.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("no-such-file.yml"); err == nil {
		t.Error("missing explicit config file accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want error
	}{
		{"unknown backend", func(c *Config) { c.Backend.Name = "dpdk" }, backend.ErrUnknownBackend},
		{"posix with driver", func(c *Config) { c.Backend.Name = "posix"; c.Backend.Driver = "mlx5" }, backend.ErrDriverForbidden},
		{"bad profile", func(c *Config) { c.Backend.Profile = "fast" }, backend.ErrUnknownProfile},
		{"empty prefix", func(c *Config) { c.Deps.Prefix = "" }, ErrEmptyPrefix},
		{"empty test name", func(c *Config) { c.Test.Name = "" }, ErrEmptyTestName},
		{"zero timeout", func(c *Config) { c.Test.Timeout = 0 }, ErrInvalidTimeout},
		{"bad role", func(c *Config) { c.Test.Role = "observer" }, ErrInvalidRole},
		{"tiny mtu", func(c *Config) { c.Test.MTU = 40 }, ErrInvalidMTU},
		{"mss exceeds mtu", func(c *Config) { c.Test.MSS = 1500 }, ErrInvalidMSS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mut(cfg)
			if err := Validate(cfg); !errors.Is(err, tt.want) {
				t.Errorf("validate: %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnvKeyMapper(t *testing.T) {
	if got := envKeyMapper("NETRIG_BACKEND_DRIVER"); got != "backend.driver" {
		t.Errorf("mapped to %q, want backend.driver", got)
	}
	if got := envKeyMapper("NETRIG_TEST_TIMEOUT"); got != "test.timeout" {
		t.Errorf("mapped to %q, want test.timeout", got)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
