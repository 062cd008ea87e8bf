package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.cue")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `database: "mirror.db"`))
	require.NoError(t, err)

	assert.Equal(t, "mirror.db", cfg.Database)
	assert.Equal(t, 4, cfg.Consumers)
	assert.Empty(t, cfg.IgnoreOnStartup)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.Equal(t, "", cfg.NotifyEndpoint)
	assert.Equal(t, 500*time.Millisecond, cfg.NotifyTimeout)
	assert.False(t, cfg.Ignore().Contains(CategoryTokens))
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database: "/var/lib/chainmirror/mirror.db"
consumers: 16
ignore_on_startup: ["metadata", "tokens"]
storage_timeout_ms: 2000
notify: {
	endpoint:   "http://localhost:8080/events"
	timeout_ms: 250
}
`))
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Consumers)
	assert.Equal(t, 2*time.Second, cfg.StorageTimeout)
	assert.Equal(t, "http://localhost:8080/events", cfg.NotifyEndpoint)
	assert.Equal(t, 250*time.Millisecond, cfg.NotifyTimeout)

	assert.True(t, cfg.Ignore().Contains(CategoryMetadata))
	assert.True(t, cfg.Ignore().Contains(CategoryTokens))
	assert.False(t, cfg.Ignore().Contains(CategoryCandyMachine))
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing database", `consumers: 4`},
		{"empty database", `database: ""`},
		{"zero consumers", `database: "m.db", consumers: 0`},
		{"unknown category", `database: "m.db", ignore_on_startup: ["governance"]`},
		{"wrong type", `database: "m.db", storage_timeout_ms: "fast"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.source))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	assert.ErrorContains(t, err, "read config")
}

func TestParseCategory(t *testing.T) {
	for _, want := range []Category{CategoryMetadata, CategoryCandyMachine, CategoryTokens} {
		got, err := ParseCategory(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseCategory("none")
	assert.Error(t, err)
}

func TestIgnoreSet(t *testing.T) {
	set := NewIgnoreSet(CategoryMetadata, CategoryNone)

	assert.True(t, set.Contains(CategoryMetadata))
	assert.False(t, set.Contains(CategoryTokens))
	assert.False(t, set.Contains(CategoryNone))
	assert.Equal(t, []string{"metadata"}, set.Names())

	var nilSet *IgnoreSet
	assert.False(t, nilSet.Contains(CategoryMetadata))
	assert.Nil(t, nilSet.Names())
}
