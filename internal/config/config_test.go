package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongxul/birthkeeper/internal/timex"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t)

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, "birthkeeper.db", c.DatabasePath)
	assert.Equal(t, "birthkeeper.key", c.IDNumberKeyPath)
	assert.Equal(t, timex.TimeOfDay{Hour: 8}, c.ScanAnchor)
	assert.Equal(t, 24*time.Hour, c.ScanInterval)
	assert.True(t, c.NotificationsEnabled)
	assert.Equal(t, "backups", c.BackupDir)
	assert.Empty(t, c.S3Bucket)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	withArgs(t, "-d", "other.db", "-t", "07:30", "-i", "3600", "-n=false", "-b", "/var/backups")

	c := LoadConfig()

	assert.Equal(t, "other.db", c.DatabasePath)
	assert.Equal(t, timex.TimeOfDay{Hour: 7, Minute: 30}, c.ScanAnchor)
	assert.Equal(t, time.Hour, c.ScanInterval)
	assert.False(t, c.NotificationsEnabled)
	assert.Equal(t, "/var/backups", c.BackupDir)
}

func TestParseJson_OverlaysAndPreservesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database_path": "json.db",
		"scan_anchor": "09:15",
		"scan_interval": "12h",
		"notifications_enabled": false,
		"s3_bucket": "birthdays",
		"s3_region": "us-east-1",
		"s3_access_key": "admin",
		"s3_secret_key": "secret",
		"s3_base_endpoint": "http://127.0.0.1:9000"
	}`), 0o600))
	withArgs(t, "-c", path)

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "json.db", cfg.DatabasePath)
	assert.Equal(t, timex.TimeOfDay{Hour: 9, Minute: 15}, cfg.ScanAnchor)
	assert.Equal(t, 12*time.Hour, cfg.ScanInterval)
	assert.False(t, cfg.NotificationsEnabled)
	assert.Equal(t, "birthdays", cfg.S3Bucket)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.S3BaseEndpoint)

	// Untouched by the JSON file.
	assert.Equal(t, "birthkeeper.key", cfg.IDNumberKeyPath)
	assert.Equal(t, "backups", cfg.BackupDir)
}

func TestParseJson_NoConfigFlagIsNoop(t *testing.T) {
	withArgs(t)

	cfg := &Config{DatabasePath: "keep.db", ScanInterval: 2 * time.Hour}
	parseJson(cfg)

	assert.Equal(t, "keep.db", cfg.DatabasePath)
	assert.Equal(t, 2*time.Hour, cfg.ScanInterval)
}

func TestLoadConfig_FlagsBeatJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_path": "json.db"}`), 0o600))
	withArgs(t, "-c", path, "-d", "flag.db")

	c := LoadConfig()
	assert.Equal(t, "flag.db", c.DatabasePath)
}
