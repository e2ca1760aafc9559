package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

const (
	DefaultProfilePath = "/sys/firmware/acpi/platform_profile"
	DefaultACPath      = "/sys/class/power_supply/AC0/online"

	powerSupplyDir = "/sys/class/power_supply"
)

// Source is one external status query.
type Source interface {
	Query(ctx context.Context) (string, error)
	Name() string
}

// FileSource reads a sysfs attribute.
type FileSource string

func (f FileSource) Name() string {
	return string(f)
}

func (f FileSource) Query(_ context.Context) (string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", errors.New().Wrap(ErrSourceUnavailable, err).WithData(string(f))
	}

	return string(data), nil
}

// DiscoverACPath finds the online attribute of the first mains power supply
// under root, falling back to AC0.
func DiscoverACPath(root string) string {
	if root == "" {
		root = powerSupplyDir
	}

	matches, err := filepath.Glob(filepath.Join(root, "*", "type"))
	if err == nil {
		for _, typePath := range matches {
			data, err := os.ReadFile(typePath)
			if err != nil || strings.TrimSpace(string(data)) != "Mains" {
				continue
			}

			online := filepath.Join(filepath.Dir(typePath), "online")
			if _, err := os.Stat(online); err == nil {
				return online
			}
		}
	}

	return filepath.Join(root, "AC0", "online")
}
