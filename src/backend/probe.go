package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Probe supplies NIC capability strings for driver resolution.
// Implementations must not mutate system state.
type Probe interface {
	Capabilities() ([]string, error)
}

// StaticProbe returns a fixed capability list. Used when capabilities come
// from configuration and in tests.
type StaticProbe []string

// Capabilities returns the fixed list.
func (p StaticProbe) Capabilities() ([]string, error) {
	return []string(p), nil
}

// pciDevices maps Mellanox PCI device IDs to their marketing family name.
// Sourced from the mlx4/mlx5 PCI ID tables.
var pciDevices = map[string]string{
	"0x1003": "ConnectX-3",
	"0x1007": "ConnectX-3 Pro",
	"0x1013": "ConnectX-4",
	"0x1015": "ConnectX-4 Lx",
	"0x1017": "ConnectX-5",
	"0x1019": "ConnectX-5 Ex",
	"0x101b": "ConnectX-6",
	"0x101d": "ConnectX-6 Dx",
	"0xa2d2": "BlueField",
	"0xa2d6": "BlueField-2",
}

const mellanoxVendor = "0x15b3"

// SysfsProbe reads NIC identities from the sysfs PCI tree. Root defaults to
// /sys/bus/pci/devices and is overridable for tests.
type SysfsProbe struct {
	Root string
}

// Capabilities scans the PCI device tree and returns one capability string
// per recognized network device. Unrecognized devices are reported by their
// raw vendor:device pair so the default driver selection still applies.
func (p SysfsProbe) Capabilities() ([]string, error) {
	root := p.Root
	if root == "" {
		root = "/sys/bus/pci/devices"
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var caps []string
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())

		class, err := readSysfsValue(filepath.Join(dir, "class"))
		if err != nil || !strings.HasPrefix(class, "0x02") {
			continue // not a network device
		}

		vendor, err := readSysfsValue(filepath.Join(dir, "vendor"))
		if err != nil {
			continue
		}
		device, err := readSysfsValue(filepath.Join(dir, "device"))
		if err != nil {
			continue
		}

		if vendor == mellanoxVendor {
			if name, ok := pciDevices[device]; ok {
				caps = append(caps, name)
				continue
			}
		}
		caps = append(caps, vendor+":"+device)
	}

	return caps, nil
}

func readSysfsValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
