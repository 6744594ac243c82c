package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/frc-ds/ds-core/internal/network"
)

// Config represents the dscore.ini configuration.
type Config struct {
	filename string

	// Network section
	team         uint32
	robotAddress string
	radioAddress string

	// Ports section
	fmsIn, fmsOut     uint32
	radioIn, radioOut uint32
	robotIn, robotOut uint32

	fmsSocketType   string
	radioSocketType string
	robotSocketType string

	customSocketCount uint32
	staticAddresses   []string

	// Debug section
	debug bool
}

// NewConfig creates a configuration with the wire-level port defaults
// from the component design.
func NewConfig(filename string) *Config {
	return &Config{
		filename: filename,

		fmsIn:  0, // disabled by default
		fmsOut: 0,

		radioIn:  0,
		radioOut: 0,

		robotIn:  1150,
		robotOut: 1110,

		fmsSocketType:   "UDP",
		radioSocketType: "UDP",
		robotSocketType: "UDP",
	}
}

// Load loads configuration from the file named at construction.
func (c *Config) Load() error {
	file, err := os.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %v", c.filename, err)
	}
	defer file.Close()

	return c.parseINI(file)
}

// LoadFromString loads configuration from a string (useful for testing).
func (c *Config) LoadFromString(data string) error {
	return c.parseINIString(data)
}

func (c *Config) parseINI(file *os.File) error {
	scanner := bufio.NewScanner(file)
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIString(data string) error {
	scanner := bufio.NewScanner(strings.NewReader(data))
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIScanner(scanner *bufio.Scanner) error {
	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if line[0] == '[' && line[len(line)-1] == ']' {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch currentSection {
		case "Network":
			c.parseNetworkSection(key, value)
		case "Ports":
			c.parsePortsSection(key, value)
		case "Debug":
			c.parseDebugSection(key, value)
		}
	}

	return scanner.Err()
}

func (c *Config) parseNetworkSection(key, value string) {
	switch key {
	case "Team":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.team = uint32(v)
		}
	case "RobotAddress":
		c.robotAddress = value
	case "RadioAddress":
		c.radioAddress = value
	case "CustomSocketCount":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.customSocketCount = uint32(v)
		}
	case "StaticAddresses":
		c.staticAddresses = c.parseStringArray(value)
	case "FMSSocketType":
		c.fmsSocketType = value
	case "RadioSocketType":
		c.radioSocketType = value
	case "RobotSocketType":
		c.robotSocketType = value
	}
}

func (c *Config) parsePortsSection(key, value string) {
	switch key {
	case "FMSIn":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.fmsIn = uint32(v)
		}
	case "FMSOut":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.fmsOut = uint32(v)
		}
	case "RadioIn":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.radioIn = uint32(v)
		}
	case "RadioOut":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.radioOut = uint32(v)
		}
	case "RobotIn":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.robotIn = uint32(v)
		}
	case "RobotOut":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.robotOut = uint32(v)
		}
	}
}

func (c *Config) parseDebugSection(key, value string) {
	switch key {
	case "Enabled":
		c.debug = c.parseBool(value)
	}
}

func (c *Config) parseBool(value string) bool {
	return value == "1" || strings.ToLower(value) == "true" || strings.ToLower(value) == "yes"
}

func (c *Config) parseStringArray(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Getters

func (c *Config) GetTeam() uint32             { return c.team }
func (c *Config) GetRobotAddress() string     { return c.robotAddress }
func (c *Config) GetRadioAddress() string     { return c.radioAddress }
func (c *Config) GetCustomSocketCount() uint32 { return c.customSocketCount }
func (c *Config) GetStaticAddresses() []string { return c.staticAddresses }
func (c *Config) GetDebug() bool              { return c.debug }

func (c *Config) GetFMSIn() uint32   { return c.fmsIn }
func (c *Config) GetFMSOut() uint32  { return c.fmsOut }
func (c *Config) GetRadioIn() uint32  { return c.radioIn }
func (c *Config) GetRadioOut() uint32 { return c.radioOut }
func (c *Config) GetRobotIn() uint32  { return c.robotIn }
func (c *Config) GetRobotOut() uint32 { return c.robotOut }

// SetStaticAddresses overrides the INI-supplied static address list,
// used when a companion YAML address file is present.
func (c *Config) SetStaticAddresses(addrs []string) {
	c.staticAddresses = addrs
}

// Ports projects the Ports section into a network.Ports value.
func (c *Config) Ports() network.Ports {
	return network.Ports{
		FMSIn:     int(c.fmsIn),
		FMSOut:    int(c.fmsOut),
		RadioIn:   int(c.radioIn),
		RadioOut:  int(c.radioOut),
		RobotIn:   int(c.robotIn),
		RobotOut:  int(c.robotOut),
	}
}

// SocketTypes projects the Network section's type strings into a
// network.SocketTypes value. Any value other than "TCP" (case
// insensitive) is treated as UDP.
func (c *Config) SocketTypes() network.SocketTypes {
	return network.SocketTypes{
		FMS:   parseSocketType(c.fmsSocketType),
		Radio: parseSocketType(c.radioSocketType),
		Robot: parseSocketType(c.robotSocketType),
	}
}

func parseSocketType(s string) network.SocketType {
	if strings.EqualFold(s, "TCP") {
		return network.SocketTCP
	}
	return network.SocketUDP
}
