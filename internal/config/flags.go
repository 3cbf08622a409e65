package config

import (
	"flag"
	"os"
	"time"

	"github.com/zhongxul/birthkeeper/internal/flagx"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the SQLite database file
//	-k string   path to the ID number key file
//	-t string   daily scan anchor as HH:MM
//	-i int      scan interval in seconds
//	-n          notifications enabled (use -n=false to disable)
//	-b string   backup directory for file backups
//
// Note: the function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-t", "-i", "-n", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the sqlite database file")
	fs.StringVar(&cfg.IDNumberKeyPath, "k", cfg.IDNumberKeyPath, "path to the id number key file")
	anchor := fs.String("t", cfg.ScanAnchor.String(), "daily scan anchor (HH:MM)")
	scanInterval := fs.Int("i", int(cfg.ScanInterval.Seconds()), "scan interval (in seconds)")
	fs.BoolVar(&cfg.NotificationsEnabled, "n", cfg.NotificationsEnabled, "notifications enabled")
	fs.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "backup directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	parsed, err := timex.ParseTimeOfDay(*anchor)
	if err != nil {
		panic(err)
	}
	cfg.ScanAnchor = parsed
	cfg.ScanInterval = time.Duration(*scanInterval) * time.Second
}
