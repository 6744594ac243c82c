package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ApplyEnvOverrides loads a .env file if present and overrides any field
// still at its zero value with the matching DS_* environment variable.
// A missing .env file is not an error; env overrides are optional.
func (c *Config) ApplyEnvOverrides() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	if c.team == 0 {
		c.team = getEnvUint("DS_TEAM", c.team)
	}
	if c.robotAddress == "" {
		c.robotAddress = getEnvString("DS_ROBOT_ADDRESS", c.robotAddress)
	}
	if c.radioAddress == "" {
		c.radioAddress = getEnvString("DS_RADIO_ADDRESS", c.radioAddress)
	}
	if c.customSocketCount == 0 {
		c.customSocketCount = getEnvUint("DS_CUSTOM_SOCKET_COUNT", c.customSocketCount)
	}
	if !c.debug {
		c.debug = getEnvBool("DS_DEBUG", c.debug)
	}
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("config: invalid value %q for %s, keeping default", v, key)
		return fallback
	}
	return uint32(parsed)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes"
}
