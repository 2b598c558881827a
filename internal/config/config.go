// Package config loads the trafdat configuration from the environment.
//
// Precedence is ENV > defaults; the server carries no config file. All
// keys use the TRAFDAT_ prefix.
package config

import (
	"fmt"
	"net"
)

// Defaults for every recognized option.
const (
	DefaultListen      = "0.0.0.0:8080"
	DefaultDistrict    = "tms"
	DefaultTrafficRoot = "/var/lib/iris/traffic"
	DefaultConfigRoot  = "/var/lib/iris/metro_config"
)

// AppConfig holds the complete server configuration.
type AppConfig struct {
	// ListenAddr is the TCP socket the HTTP server binds.
	ListenAddr string
	// DefaultDistrict is assumed when a URL shape omits the district.
	DefaultDistrict string
	// TrafficRoot is the base path of the traffic sensor archive.
	TrafficRoot string
	// ConfigRoot is the base path of the metro config snapshots.
	ConfigRoot string
	// LogLevel selects the zerolog level ("debug", "info", ...).
	LogLevel string
}

// FromEnv builds the configuration from environment variables, applying
// defaults for anything unset.
func FromEnv() AppConfig {
	return AppConfig{
		ListenAddr:      ParseString("TRAFDAT_LISTEN", DefaultListen),
		DefaultDistrict: ParseString("TRAFDAT_DISTRICT", DefaultDistrict),
		TrafficRoot:     ParseString("TRAFDAT_TRAFFIC_ROOT", DefaultTrafficRoot),
		ConfigRoot:      ParseString("TRAFDAT_CONFIG_ROOT", DefaultConfigRoot),
		LogLevel:        ParseString("TRAFDAT_LOG_LEVEL", "info"),
	}
}

// Validate reports configuration errors that must fail startup.
func (c AppConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if c.DefaultDistrict == "" {
		return fmt.Errorf("default district must not be empty")
	}
	if c.TrafficRoot == "" || c.ConfigRoot == "" {
		return fmt.Errorf("archive roots must not be empty")
	}
	return nil
}
