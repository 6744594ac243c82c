package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// addressListFile is the companion YAML shape for the static probe
// address list, used in preference to the INI's comma-separated
// StaticAddresses key when present.
type addressListFile struct {
	Addresses []string `yaml:"addresses"`
}

// LoadStaticAddressesYAML reads a YAML address file and applies it over
// the INI-supplied list. A missing or malformed file is not fatal: the
// INI-supplied list (if any) is kept as the fallback.
func (c *Config) LoadStaticAddressesYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: static address file %s unavailable, keeping INI list: %w", path, err)
	}

	var parsed addressListFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: static address file %s malformed, keeping INI list: %w", path, err)
	}

	c.SetStaticAddresses(parsed.Addresses)
	return nil
}
