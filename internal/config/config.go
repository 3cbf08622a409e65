package config

import (
	"time"

	"github.com/zhongxul/birthkeeper/internal/timex"
)

// Config holds runtime settings for the BirthKeeper service.
//
// Units: ScanInterval is a time.Duration; ScanAnchor is a local wall-clock
// time of day at which the daily scan is anchored.
type Config struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string
	// IDNumberKeyPath is the file holding the local key that seals ID numbers
	// at rest.
	IDNumberKeyPath string

	// ScanAnchor is the time of day for the first scan of each day.
	ScanAnchor timex.TimeOfDay
	// ScanInterval is how often scans repeat after the anchor.
	ScanInterval time.Duration
	// NotificationsEnabled gates delivery globally without stopping scans.
	NotificationsEnabled bool

	// BackupDir is where file backups land when S3 is not configured.
	BackupDir string
	// S3Bucket selects the S3 backup target when non-empty.
	S3Bucket       string
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "birthkeeper.db"
	c.IDNumberKeyPath = "birthkeeper.key"
	c.ScanAnchor = timex.TimeOfDay{Hour: 8}
	c.ScanInterval = 24 * time.Hour
	c.NotificationsEnabled = true
	c.BackupDir = "backups"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
