package config

// BackendConfig selects the compilation target.
type BackendConfig struct {
	// Name is the explicit backend choice: "posix" or "kernel-bypass".
	// Empty means resolve from hardware.
	Name string `koanf:"name"`

	// Driver is the explicit driver variant: "mlx4" or "mlx5".
	// Empty means resolve from hardware. Only valid for kernel-bypass.
	Driver string `koanf:"driver"`

	// Profile is the build profile: "debug" or "release".
	Profile string `koanf:"profile"`

	// NICs overrides hardware probing with fixed capability strings,
	// comma-separated (e.g. "ConnectX-5"). Empty means probe sysfs.
	NICs string `koanf:"nics"`
}

// DepsConfig locates the native dependency sources and install tree.
type DepsConfig struct {
	// Prefix is the installation prefix for native dependency artifacts.
	Prefix string `koanf:"prefix"`

	// Pins is the path to the dependency pin file (TOML).
	Pins string `koanf:"pins"`

	// PacketLib is the source checkout of the packet-processing library.
	PacketLib string `koanf:"packetlib"`

	// Bypass is the source checkout of the kernel-bypass TCP stack.
	Bypass string `koanf:"bypass"`
}

// BuildConfig drives compilation of the library and its tests.
type BuildConfig struct {
	// Source is the root of the networking library source tree.
	Source string `koanf:"source"`

	// LibPath holds extra native library search paths, colon-separated.
	// Appended after dependency-derived paths, never overriding them.
	LibPath string `koanf:"libpath"`

	// Jobs caps build parallelism; 0 defers to the build tool.
	Jobs int `koanf:"jobs"`
}

// TestConfig drives test invocations.
type TestConfig struct {
	// Name is the test to run (e.g. "tcp-echo", "udp-ping-pong").
	Name string `koanf:"name"`

	// Role is the peer role for this invocation: "client" or "server".
	Role string `koanf:"role"`

	// Timeout is the wall-clock bound for one invocation, in seconds.
	Timeout int `koanf:"timeout"`

	// MTU and MSS are forwarded into the test binary's environment.
	MTU int `koanf:"mtu"`
	MSS int `koanf:"mss"`

	// BinDir is where built test binaries live, relative to build.source.
	BinDir string `koanf:"bindir"`

	// Delay is how long "test pair" waits after starting the server before
	// launching the client, in milliseconds.
	Delay int `koanf:"delay"`

	// Config is the test-harness configuration file forwarded to test
	// binaries as CONFIG_PATH. Optional.
	Config string `koanf:"config"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`

	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}
