package manifest

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are the process-level settings read from the environment. Flags
// override them and they override the manifest.
type Settings struct {
	Manifest  string `env:"CONFKIT_MANIFEST" envDefault:"confkit.yaml"`
	Profile   string `env:"CONFKIT_PROFILE"`
	LogLevel  string `env:"CONFKIT_LOG_LEVEL"`
	LogFormat string `env:"CONFKIT_LOG_FORMAT"`
}

// LoadSettings parses Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	return s, nil
}

// LoadSettingsFrom parses Settings from an explicit environment map.
func LoadSettingsFrom(environ map[string]string) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	return s, nil
}

// Apply overlays the non-empty settings onto m.
func (s Settings) Apply(m *Manifest) {
	if s.Profile != "" {
		m.Profile = s.Profile
	}
	if s.LogLevel != "" {
		m.Logging.Level = s.LogLevel
	}
	if s.LogFormat != "" {
		m.Logging.Format = s.LogFormat
	}
}
