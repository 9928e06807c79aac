// Package config provides Viper-based configuration loading for the arena engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the combat archive.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds orchestrator settings shared by every combat.
type CombatConfig struct {
	// TurnCeiling is the number of full turns after which a combat is declared a draw.
	TurnCeiling int `mapstructure:"turn_ceiling"`
	// Seed seeds the deterministic random source; 0 selects the crypto source.
	Seed uint64 `mapstructure:"seed"`
}

// SimulationConfig drives the batch simulator.
type SimulationConfig struct {
	Runs        int    `mapstructure:"runs"`
	Workers     int    `mapstructure:"workers"`
	PlayerClass string `mapstructure:"player_class"`
	PlayerLevel int    `mapstructure:"player_level"`
	WeaponBonus int    `mapstructure:"weapon_bonus"`
	ArmorBonus  int    `mapstructure:"armor_bonus"`
	Enemy       string `mapstructure:"enemy"`
	Stage       int    `mapstructure:"stage"`
	Profile     string `mapstructure:"profile"`
	// Strategy selects the scripted player policy: "light_only", "defend_only" or "greedy".
	Strategy string `mapstructure:"strategy"`
	// Archive persists every finished combat to the database when true.
	Archive bool `mapstructure:"archive"`
}

// ContentConfig locates the YAML content tables.
type ContentConfig struct {
	// Dir overrides the embedded content; empty means use the embedded defaults.
	Dir string `mapstructure:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Combat     CombatConfig     `mapstructure:"combat"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Content    ContentConfig    `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Simulation.Archive {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	if c.TurnCeiling < 1 {
		return fmt.Errorf("combat.turn_ceiling must be >= 1, got %d", c.TurnCeiling)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Runs < 1 {
		errs = append(errs, fmt.Sprintf("simulation.runs must be >= 1, got %d", s.Runs))
	}
	if s.Workers < 1 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 1, got %d", s.Workers))
	}
	if s.PlayerClass == "" {
		errs = append(errs, "simulation.player_class must not be empty")
	}
	if s.PlayerLevel < 1 {
		errs = append(errs, fmt.Sprintf("simulation.player_level must be >= 1, got %d", s.PlayerLevel))
	}
	if s.Enemy == "" {
		errs = append(errs, "simulation.enemy must not be empty")
	}
	if s.Stage < 1 || s.Stage > 3 {
		errs = append(errs, fmt.Sprintf("simulation.stage must be 1-3, got %d", s.Stage))
	}
	if s.Profile != "normal" && s.Profile != "aggressive" {
		errs = append(errs, fmt.Sprintf("simulation.profile must be one of [normal, aggressive], got %q", s.Profile))
	}
	validStrategies := map[string]bool{"light_only": true, "defend_only": true, "greedy": true}
	if !validStrategies[s.Strategy] {
		errs = append(errs, fmt.Sprintf("simulation.strategy must be one of [light_only, defend_only, greedy], got %q", s.Strategy))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadDefaults returns the default configuration with environment overrides
// applied and no config file.
//
// Postcondition: Returns a valid Config or a non-nil error.
func LoadDefaults() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.turn_ceiling", 20)
	v.SetDefault("combat.seed", 0)

	v.SetDefault("simulation.runs", 100)
	v.SetDefault("simulation.workers", 4)
	v.SetDefault("simulation.player_class", "warrior")
	v.SetDefault("simulation.player_level", 1)
	v.SetDefault("simulation.weapon_bonus", 0)
	v.SetDefault("simulation.armor_bonus", 0)
	v.SetDefault("simulation.enemy", "goblin")
	v.SetDefault("simulation.stage", 1)
	v.SetDefault("simulation.profile", "normal")
	v.SetDefault("simulation.strategy", "greedy")
	v.SetDefault("simulation.archive", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.dir", "")
}
