package deps

import (
	"errors"
	"testing"

	"github.com/sofmeright/netrig/src/backend"
)

func TestFingerprintSensitivity(t *testing.T) {
	base := backend.Spec{
		Name:    backend.KernelBypass,
		Driver:  backend.DriverMLX5,
		Profile: backend.ProfileRelease,
	}
	ref := Fingerprint(StagePacketLib, base, "23.11.0", "abc123", "")

	if got := Fingerprint(StagePacketLib, base, "23.11.0", "abc123", ""); got != ref {
		t.Error("fingerprint not stable over identical inputs")
	}

	variants := map[string]string{}

	mlx4 := base
	mlx4.Driver = backend.DriverMLX4
	variants["driver"] = Fingerprint(StagePacketLib, mlx4, "23.11.0", "abc123", "")

	debug := base
	debug.Profile = backend.ProfileDebug
	variants["profile"] = Fingerprint(StagePacketLib, debug, "23.11.0", "abc123", "")

	variants["version"] = Fingerprint(StagePacketLib, base, "24.0.0", "abc123", "")
	variants["revision"] = Fingerprint(StagePacketLib, base, "23.11.0", "def456", "")
	variants["stage"] = Fingerprint(StageBypass, base, "23.11.0", "abc123", "")
	variants["dependency"] = Fingerprint(StagePacketLib, base, "23.11.0", "abc123", ref)

	for input, fp := range variants {
		if fp == ref {
			t.Errorf("changing %s did not change the fingerprint", input)
		}
	}
}

func TestSourceRevisionNonRepo(t *testing.T) {
	if rev := SourceRevision(t.TempDir()); rev != "unversioned" {
		t.Errorf("revision = %q, want unversioned", rev)
	}
}

func TestStampRoundTrip(t *testing.T) {
	dir := t.TempDir()

	in := &Stamp{
		Fingerprint:  "deadbeef",
		Version:      "23.11.0",
		LibraryPaths: []string{dir + "/lib", dir + "/lib64"},
	}
	if err := WriteStamp(dir, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := ReadStamp(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Fingerprint != in.Fingerprint || out.Version != in.Version {
		t.Errorf("stamp = %+v, want %+v", out, in)
	}
	if len(out.LibraryPaths) != 2 {
		t.Errorf("library paths = %v", out.LibraryPaths)
	}
}

func TestReadStampMissing(t *testing.T) {
	if _, err := ReadStamp(t.TempDir()); !errors.Is(err, ErrStampMissing) {
		t.Errorf("err = %v, want ErrStampMissing", err)
	}
}
