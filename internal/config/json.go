package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/zhongxul/birthkeeper/internal/flagx"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the scan interval either as a string
// like "24h" or as integer nanoseconds, and parses the scan anchor from
// "HH:MM". Parsed values are copied into the runtime Config.
type JsonConfig struct {
	DatabasePath         string         `json:"database_path"`
	IDNumberKeyPath      string         `json:"id_number_key_path"`
	ScanAnchor           string         `json:"scan_anchor"`
	ScanInterval         timex.Duration `json:"scan_interval"`
	NotificationsEnabled *bool          `json:"notifications_enabled"`
	BackupDir            string         `json:"backup_dir"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3AccessKey          string         `json:"s3_access_key"`
	S3SecretKey          string         `json:"s3_secret_key"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c/-config flags via flagx.JsonConfigFlags();
// when neither is present the function returns without touching cfg. Fields
// absent from the JSON keep their current values. Panics on read, unmarshal
// or anchor parse errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.IDNumberKeyPath != "" {
		cfg.IDNumberKeyPath = jc.IDNumberKeyPath
	}
	if jc.ScanAnchor != "" {
		anchor, err := timex.ParseTimeOfDay(jc.ScanAnchor)
		if err != nil {
			panic(err)
		}
		cfg.ScanAnchor = anchor
	}
	if jc.ScanInterval.Duration != 0 {
		cfg.ScanInterval = time.Duration(jc.ScanInterval.Duration)
	}
	if jc.NotificationsEnabled != nil {
		cfg.NotificationsEnabled = *jc.NotificationsEnabled
	}
	if jc.BackupDir != "" {
		cfg.BackupDir = jc.BackupDir
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
}
