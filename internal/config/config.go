// Package config reads the core's environment-variable configuration
// (spec.md §6.4): no configuration file is read by the core itself,
// matching the teacher's named-option-struct-with-defaults style
// (app/convbin/converter's Options) but sourced from the environment
// instead of command-line flags, since the accept loop/CLI front-end
// that would parse flags is out of this module's scope.
package config

import (
	"os"
	"strconv"
)

// DefaultSHMKey is the fallback GPSD_SHM_KEY value (spec.md §6.2).
const DefaultSHMKey = 0x4E545030

// Config holds the core's environment-driven knobs, each with an
// explicit default so callers never need a nil check.
type Config struct {
	SHMKey int64 // GPSD_SHM_KEY

	// DriverDebug maps a driver name ("CASIC", "NOVATEL", ...) to a
	// per-driver verbosity level read from GPSD_DEBUG_<NAME>.
	DriverDebug map[string]int
}

// Load reads Config from the environment, falling back to documented
// defaults for anything unset or malformed.
func Load() Config {
	cfg := Config{
		SHMKey:      DefaultSHMKey,
		DriverDebug: map[string]int{},
	}

	if v, ok := os.LookupEnv("GPSD_SHM_KEY"); ok {
		if n, err := strconv.ParseInt(v, 0, 64); err == nil {
			cfg.SHMKey = n
		}
	}

	for _, drv := range []string{"CASIC", "NOVATEL", "GPS", "BEIDOU", "GALILEO", "GLONASS"} {
		if v, ok := os.LookupEnv("GPSD_DEBUG_" + drv); ok {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.DriverDebug[drv] = n
			}
		}
	}

	return cfg
}

// DebugLevel returns the configured verbosity for driver, 0 if unset.
func (c Config) DebugLevel(driver string) int {
	return c.DriverDebug[driver]
}
