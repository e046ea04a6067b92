package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/compmemo/internal/crypto"
	"github.com/eigerco/compmemo/pkg/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compmemo.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[store]
path = "/var/lib/compmemo"

[hasher]
kind = "keccak"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/lib/compmemo", cfg.Store.Path)
	assert.Equal(t, "keccak", cfg.Hasher.Kind)
	// Not set in the file
	assert.Equal(t, DefaultProgramID, cfg.Program.ID)

	opts, err := cfg.LogOptions()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, opts.LogLevel)
	assert.Equal(t, log.JSONLogger, opts.Type)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{name: "unknown hasher", content: "[hasher]\nkind = \"md5\"\n", target: crypto.ErrUnknownHasher},
		{name: "bad log level", content: "[log]\nlevel = \"loud\"\n"},
		{name: "bad log format", content: "[log]\nformat = \"xml\"\n"},
		{name: "not toml", content: "[log\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.LogOptions()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, opts.LogLevel)
	assert.Equal(t, log.ConsoleLogger, opts.Type)
}
