package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveExplicitChoiceWins(t *testing.T) {
	// An explicit socket backend ignores whatever the probe reports.
	spec, err := Resolve("posix", DriverNone, ProfileRelease, StaticProbe{"ConnectX-5"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if spec.Name != Posix {
		t.Errorf("name = %s, want %s", spec.Name, Posix)
	}
	if spec.Driver != DriverNone {
		t.Errorf("driver = %q, want absent", spec.Driver)
	}
}

func TestResolveProbeSelectsDriver(t *testing.T) {
	tests := []struct {
		name string
		caps []string
		want Driver
	}{
		{"connectx5", []string{"ConnectX-5"}, DriverMLX5},
		{"connectx4 among others", []string{"e1000", "ConnectX-4 Lx"}, DriverMLX5},
		{"bluefield", []string{"BlueField-2"}, DriverMLX5},
		{"unknown nic", []string{"unknown-nic"}, DriverMLX4},
		{"no hardware", nil, DriverMLX4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Resolve("", DriverNone, ProfileRelease, StaticProbe(tt.caps))
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if spec.Name != KernelBypass {
				t.Errorf("name = %s, want %s", spec.Name, KernelBypass)
			}
			if spec.Driver != tt.want {
				t.Errorf("driver = %s, want %s", spec.Driver, tt.want)
			}
		})
	}
}

func TestResolveExplicitDriverSkipsProbe(t *testing.T) {
	spec, err := Resolve("kernel-bypass", DriverMLX4, ProfileDebug, failingProbe{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if spec.Driver != DriverMLX4 {
		t.Errorf("driver = %s, want %s", spec.Driver, DriverMLX4)
	}
}

func TestResolveUnknownBackend(t *testing.T) {
	_, err := Resolve("iouring", DriverNone, ProfileRelease, StaticProbe{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestResolvePosixRejectsDriver(t *testing.T) {
	_, err := Resolve("posix", DriverMLX5, ProfileRelease, StaticProbe{})
	if !errors.Is(err, ErrDriverForbidden) {
		t.Errorf("err = %v, want ErrDriverForbidden", err)
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want error
	}{
		{"posix ok", Spec{Name: Posix, Profile: ProfileRelease}, nil},
		{"bypass mlx5 ok", Spec{Name: KernelBypass, Driver: DriverMLX5, Profile: ProfileDebug}, nil},
		{"posix with driver", Spec{Name: Posix, Driver: DriverMLX4, Profile: ProfileRelease}, ErrDriverForbidden},
		{"bypass without driver", Spec{Name: KernelBypass, Profile: ProfileRelease}, ErrDriverMissing},
		{"unknown backend", Spec{Name: "dpdk", Profile: ProfileRelease}, ErrUnknownBackend},
		{"unknown profile", Spec{Name: Posix, Profile: "fast"}, ErrUnknownProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("validate: %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validate: %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSysfsProbe(t *testing.T) {
	root := t.TempDir()

	writeDevice(t, root, "0000:03:00.0", "0x020000", "0x15b3", "0x1017") // ConnectX-5
	writeDevice(t, root, "0000:04:00.0", "0x020000", "0x8086", "0x10d3") // other NIC
	writeDevice(t, root, "0000:00:1f.3", "0x040300", "0x8086", "0xa348") // audio, skipped

	caps, err := SysfsProbe{Root: root}.Capabilities()
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if len(caps) != 2 {
		t.Fatalf("got %d capabilities, want 2: %v", len(caps), caps)
	}

	found := map[string]bool{}
	for _, c := range caps {
		found[c] = true
	}
	if !found["ConnectX-5"] {
		t.Errorf("missing ConnectX-5 in %v", caps)
	}
	if !found["0x8086:0x10d3"] {
		t.Errorf("missing raw vendor:device pair in %v", caps)
	}

	if driverFor(caps) != DriverMLX5 {
		t.Errorf("driverFor = %s, want %s", driverFor(caps), DriverMLX5)
	}
}

type failingProbe struct{}

func (failingProbe) Capabilities() ([]string, error) {
	return nil, errors.New("probe must not be called")
}

func writeDevice(t *testing.T, root, addr, class, vendor, device string) {
	t.Helper()

	dir := filepath.Join(root, addr)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, val := range map[string]string{"class": class, "vendor": vendor, "device": device} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(val+"\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}
