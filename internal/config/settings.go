package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/decision-queue/internal/common"
	"github.com/Veraticus/decision-queue/internal/rollup"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeyDatabasePath = "database.path"
	KeyClockNow     = "clock.now"
	KeyRollups      = "rollups"
)

// Settings are the resolved runtime settings.
type Settings struct {
	Now          time.Time
	LogLevel     string
	LogFormat    string
	DatabasePath string
	Rollups      []rollup.PolicyConfig
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
}

// Load reads settings from v. The clock falls back to time.Now when
// clock.now is unset.
func Load(v *viper.Viper) (Settings, error) {
	now, err := ResolveNow(v.GetString(KeyClockNow), time.Now)
	if err != nil {
		return Settings{}, err
	}

	var policies []rollup.PolicyConfig
	if v.IsSet(KeyRollups) {
		if err := v.UnmarshalKey(KeyRollups, &policies); err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyRollups, err)
		}
	}

	dbPath := ExpandPath(v.GetString(KeyDatabasePath))
	if dbPath == "" {
		dbPath = DefaultDatabasePath()
	}

	return Settings{
		Now:          now,
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		DatabasePath: dbPath,
		Rollups:      policies,
	}, nil
}

// ResolveNow parses an RFC3339 clock override. An empty value uses clock.
func ResolveNow(value string, clock func() time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return clock().UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		if d, dateErr := time.Parse(time.DateOnly, value); dateErr == nil {
			return d.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339, got %q", common.ErrInvalidConfig, KeyClockNow, value)
	}
	return t.UTC(), nil
}

// Registry builds the rollup registry: the built-in policies overlaid with
// any configured ones.
func (s Settings) Registry() (*rollup.Registry, error) {
	r := rollup.DefaultRegistry()
	if err := rollup.Apply(r, s.Rollups); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return r, nil
}
