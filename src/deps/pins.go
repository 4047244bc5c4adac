package deps

import (
	"errors"
	"fmt"
	"os"

	masterminds "github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"
)

// Pin freezes one native dependency to an exact upstream version.
type Pin struct {
	// Version is the exact semver version to build.
	Version string `toml:"version"`

	// Constraint optionally restricts which versions are acceptable
	// (e.g. ">= 23.11, < 25"). Checked against Version at load time.
	Constraint string `toml:"constraint"`
}

// Pins is the parsed dependency pin file (netrig-deps.toml).
type Pins struct {
	PacketLibrary Pin `toml:"packet-library"`
	BypassStack   Pin `toml:"bypass-stack"`
}

// Pin file errors.
var (
	// ErrPinMissing indicates a stage has no version pinned.
	ErrPinMissing = errors.New("dependency has no pinned version")

	// ErrPinOutsideConstraint indicates a pinned version violates its own
	// constraint.
	ErrPinOutsideConstraint = errors.New("pinned version violates constraint")
)

// LoadPins reads and validates the pin file at path.
func LoadPins(path string) (*Pins, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pin file: %w", err)
	}

	pins := &Pins{}
	if err := toml.Unmarshal(data, pins); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := pins.PacketLibrary.validate(StagePacketLib); err != nil {
		return nil, err
	}
	if err := pins.BypassStack.validate(StageBypass); err != nil {
		return nil, err
	}

	return pins, nil
}

// For returns the pin for a stage identifier.
func (p *Pins) For(stage string) Pin {
	if stage == StageBypass {
		return p.BypassStack
	}
	return p.PacketLibrary
}

func (pin Pin) validate(stage string) error {
	if pin.Version == "" {
		return fmt.Errorf("%s: %w", stage, ErrPinMissing)
	}

	v, err := masterminds.NewVersion(pin.Version)
	if err != nil {
		return fmt.Errorf("%s version %q: %w", stage, pin.Version, err)
	}

	if pin.Constraint == "" {
		return nil
	}
	c, err := masterminds.NewConstraint(pin.Constraint)
	if err != nil {
		return fmt.Errorf("%s constraint %q: %w", stage, pin.Constraint, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%s: version %s vs %q: %w",
			stage, pin.Version, pin.Constraint, ErrPinOutsideConstraint)
	}

	return nil
}
