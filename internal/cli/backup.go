package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/zhongxul/birthkeeper/internal/backup"
)

func (a *App) export(ctx context.Context) {
	payload, err := a.backups.Export(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	location, err := a.target.Put(ctx, backup.DefaultName(time.Now()), payload)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintln(a.out, "Backup written to", location)
}

func (a *App) importBackup(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: import <location> <overwrite|merge>")
		return
	}

	var mode backup.Mode
	switch args[1] {
	case "overwrite":
		mode = backup.ModeOverwrite
	case "merge":
		mode = backup.ModeMerge
	default:
		fmt.Fprintln(a.out, "Unknown import mode:", args[1])
		return
	}

	payload, err := a.target.Get(ctx, args[0])
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	res, err := a.backups.Import(ctx, payload, mode)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintf(a.out, "Imported %d, updated %d, skipped %d\n", res.Imported, res.Updated, res.Skipped)
}
