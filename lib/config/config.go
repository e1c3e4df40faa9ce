// Copyright 2026 The PartyCrusher Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"gopkg.in/yaml.v3"

	"github.com/partycrusher/partycrusher/lib/ref"
)

// Environment is the deployment environment named by APP_ENV.
type Environment string

const (
	Development Environment = "dev"
	UAT         Environment = "uat"
	Production  Environment = "prod"
)

// ParseEnvironment validates an APP_ENV value. Empty means Development.
func ParseEnvironment(value string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(value))) {
	case "", Development:
		return Development, nil
	case UAT:
		return UAT, nil
	case Production:
		return Production, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q (want dev, uat, or prod)", value)
	}
}

// Config is the full bot configuration.
type Config struct {
	// Environment is set from APP_ENV, not from the file.
	Environment Environment `yaml:"-"`

	Matrix  MatrixConfig  `yaml:"matrix"`
	Listing ListingConfig `yaml:"listing"`
	Roles   RolesConfig   `yaml:"roles"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`

	Dev  *Overrides `yaml:"dev,omitempty"`
	UAT  *Overrides `yaml:"uat,omitempty"`
	Prod *Overrides `yaml:"prod,omitempty"`
}

// Overrides holds per-environment replacements. Non-zero fields win.
type Overrides struct {
	Matrix  *MatrixConfig  `yaml:"matrix,omitempty"`
	Listing *ListingConfig `yaml:"listing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// MatrixConfig configures the homeserver connection.
type MatrixConfig struct {
	// HomeserverURL is the client-server API base URL.
	HomeserverURL string `yaml:"homeserver_url"`

	// UserID is the bot account, e.g. "@partycrusher:example.org".
	UserID string `yaml:"user_id"`

	// SessionFile, when set, is read instead of MATRIX_ACCESS_TOKEN.
	// The login subcommand writes it.
	SessionFile string `yaml:"session_file"`

	// CommandPrefix starts every bot command. Default: "!lfg".
	CommandPrefix string `yaml:"command_prefix"`

	// Rooms limits the bot to these room IDs. Empty serves every room
	// the bot is joined to and accepts every invite.
	Rooms []string `yaml:"rooms"`

	// SyncTimeout is the /sync long-poll duration. Default: 30s.
	SyncTimeout time.Duration `yaml:"sync_timeout"`

	// SendRate is the sustained outbound event rate per second.
	// SendBurst is the bucket size. Defaults: 5/s, burst 10.
	SendRate  float64 `yaml:"send_rate"`
	SendBurst int     `yaml:"send_burst"`
}

// ListingConfig configures listing timing.
type ListingConfig struct {
	// Expiry is how long a listing stays open. Default: 30m.
	Expiry time.Duration `yaml:"expiry"`

	// DraftTimeout discards an uncommitted draft. Default: 3m.
	DraftTimeout time.Duration `yaml:"draft_timeout"`

	// Retention keeps closed and expired listings resolvable. Default: 1h.
	Retention time.Duration `yaml:"retention"`

	// PruneSchedule is the cron expression for the retention sweep.
	// Default: "*/5 * * * *".
	PruneSchedule string `yaml:"prune_schedule"`
}

// RolesConfig configures role-handle resolution.
type RolesConfig struct {
	// CacheGuilds caps how many rooms' role handles stay cached.
	// Default: 256.
	CacheGuilds int `yaml:"cache_guilds"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddress serves /metrics when non-empty, e.g. ":9464".
	ListenAddress string `yaml:"listen_address"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level"`
}

// Default returns the base configuration the file is loaded over.
func Default() *Config {
	return &Config{
		Environment: Development,
		Matrix: MatrixConfig{
			CommandPrefix: "!lfg",
			SyncTimeout:   30 * time.Second,
			SendRate:      5,
			SendBurst:     10,
		},
		Listing: ListingConfig{
			Expiry:        30 * time.Minute,
			DraftTimeout:  3 * time.Minute,
			Retention:     time.Hour,
			PruneSchedule: "*/5 * * * *",
		},
		Roles: RolesConfig{
			CacheGuilds: 256,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the file named by PARTYCRUSHER_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv("PARTYCRUSHER_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("PARTYCRUSHER_CONFIG environment variable not set; " +
			"set it to the path of your partycrusher.yaml, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, applies the override
// section for APP_ENV, expands variables, and applies the LOG_LEVEL
// and MATRIX_ROOMS environment overrides.
func LoadFile(path string) (*Config, error) {
	environment, err := ParseEnvironment(os.Getenv("APP_ENV"))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Environment = environment

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	cfg.applyProcessEnvironment()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Dev
	case UAT:
		overrides = c.UAT
	case Production:
		overrides = c.Prod
	}
	if overrides == nil {
		return
	}

	if matrix := overrides.Matrix; matrix != nil {
		setString(&c.Matrix.HomeserverURL, matrix.HomeserverURL)
		setString(&c.Matrix.UserID, matrix.UserID)
		setString(&c.Matrix.SessionFile, matrix.SessionFile)
		setString(&c.Matrix.CommandPrefix, matrix.CommandPrefix)
		if len(matrix.Rooms) > 0 {
			c.Matrix.Rooms = matrix.Rooms
		}
		setDuration(&c.Matrix.SyncTimeout, matrix.SyncTimeout)
		if matrix.SendRate > 0 {
			c.Matrix.SendRate = matrix.SendRate
		}
		if matrix.SendBurst > 0 {
			c.Matrix.SendBurst = matrix.SendBurst
		}
	}

	if listing := overrides.Listing; listing != nil {
		setDuration(&c.Listing.Expiry, listing.Expiry)
		setDuration(&c.Listing.DraftTimeout, listing.DraftTimeout)
		setDuration(&c.Listing.Retention, listing.Retention)
		setString(&c.Listing.PruneSchedule, listing.PruneSchedule)
	}

	if metrics := overrides.Metrics; metrics != nil {
		setString(&c.Metrics.ListenAddress, metrics.ListenAddress)
	}

	if log := overrides.Log; log != nil {
		setString(&c.Log.Level, log.Level)
	}
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setDuration(target *time.Duration, value time.Duration) {
	if value != 0 {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":    os.Getenv("HOME"),
		"APP_ENV": string(c.Environment),
	}
	c.Matrix.HomeserverURL = expandVars(c.Matrix.HomeserverURL, vars)
	c.Matrix.UserID = expandVars(c.Matrix.UserID, vars)
	c.Matrix.SessionFile = expandVars(c.Matrix.SessionFile, vars)
	c.Metrics.ListenAddress = expandVars(c.Metrics.ListenAddress, vars)
	for index, room := range c.Matrix.Rooms {
		c.Matrix.Rooms[index] = expandVars(room, vars)
	}
}

// applyProcessEnvironment applies the two settings the environment may
// override directly.
func (c *Config) applyProcessEnvironment() {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if rooms := os.Getenv("MATRIX_ROOMS"); rooms != "" {
		c.Matrix.Rooms = nil
		for _, room := range strings.Split(rooms, ",") {
			if room = strings.TrimSpace(room); room != "" {
				c.Matrix.Rooms = append(c.Matrix.Rooms, room)
			}
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default}. Provided vars are
// checked before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		defaultValue := parts[2]

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors and reports all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Matrix.HomeserverURL == "" {
		errs = append(errs, fmt.Errorf("matrix.homeserver_url is required"))
	}
	if c.Matrix.SessionFile == "" {
		if _, err := ref.ParseUserID(c.Matrix.UserID); err != nil {
			errs = append(errs, fmt.Errorf("matrix.user_id: %w", err))
		}
	}
	if strings.TrimSpace(c.Matrix.CommandPrefix) == "" || strings.ContainsAny(c.Matrix.CommandPrefix, " \t\n") {
		errs = append(errs, fmt.Errorf("matrix.command_prefix must be a single non-empty word"))
	}
	for _, room := range c.Matrix.Rooms {
		if _, err := ref.ParseRoomID(room); err != nil {
			errs = append(errs, fmt.Errorf("matrix.rooms: %w", err))
		}
	}
	if c.Matrix.SyncTimeout <= 0 {
		errs = append(errs, fmt.Errorf("matrix.sync_timeout must be positive"))
	}
	if c.Matrix.SendRate <= 0 || c.Matrix.SendBurst < 1 {
		errs = append(errs, fmt.Errorf("matrix.send_rate must be positive and matrix.send_burst at least 1"))
	}

	if c.Listing.Expiry <= 0 {
		errs = append(errs, fmt.Errorf("listing.expiry must be positive"))
	}
	if c.Listing.DraftTimeout <= 0 {
		errs = append(errs, fmt.Errorf("listing.draft_timeout must be positive"))
	}
	if c.Listing.Retention < 0 {
		errs = append(errs, fmt.Errorf("listing.retention must not be negative"))
	}
	if !gronx.New().IsValid(c.Listing.PruneSchedule) {
		errs = append(errs, fmt.Errorf("listing.prune_schedule %q is not a valid cron expression", c.Listing.PruneSchedule))
	}

	if c.Roles.CacheGuilds < 1 {
		errs = append(errs, fmt.Errorf("roles.cache_guilds must be at least 1"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn, or error", c.Log.Level))
	}

	return errors.Join(errs...)
}

// RoomIDs returns Matrix.Rooms parsed. Call after Validate.
func (c *Config) RoomIDs() []ref.RoomID {
	rooms := make([]ref.RoomID, 0, len(c.Matrix.Rooms))
	for _, room := range c.Matrix.Rooms {
		if roomID, err := ref.ParseRoomID(room); err == nil {
			rooms = append(rooms, roomID)
		}
	}
	return rooms
}
