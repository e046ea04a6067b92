package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"
	"github.com/rs/zerolog"

	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/pkg/log"
)

// Config is the on-disk configuration of the compmemo tool.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`
	Hasher  HasherConfig  `toml:"hasher"`
	Program ProgramConfig `toml:"program"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StoreConfig struct {
	// Path of the outbox database. Empty keeps records in memory.
	Path string `toml:"path"`
}

type HasherConfig struct {
	Kind string `toml:"kind"`
}

type ProgramConfig struct {
	// ID is the base58 program id used as account owner.
	ID string `toml:"id"`
}

const DefaultProgramID = "Cj53TGGvopGVvdnB6vT5TK4LsoU4x7XY1w1ZLbpc9gfe"

func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", Format: "console"},
		Store:   StoreConfig{Path: "compmemo-db"},
		Hasher:  HasherConfig{Kind: "poseidon"},
		Program: ProgramConfig{ID: DefaultProgramID},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c Config) Validate() error {
	if _, err := log.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := log.ParseLoggerType(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if _, err := crypto.NewHasher(c.Hasher.Kind); err != nil {
		return fmt.Errorf("hasher.kind: %w", err)
	}
	return nil
}

// LogOptions converts the log section into logger options.
func (c Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.Log.Level)
	if err != nil {
		return log.Options{}, err
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	typ, err := log.ParseLoggerType(c.Log.Format)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{LogLevel: level, Type: typ}, nil
}
