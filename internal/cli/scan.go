package cli

import (
	"context"
	"fmt"
)

func (a *App) scan(ctx context.Context) {
	summary, err := a.scheduler.RunNow(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintf(a.out, "Scan %s: %d people, %d notified, %d scheduled, %d skipped, %d failed\n",
		summary.RunID, summary.People, summary.Notified, summary.Scheduled, summary.Skipped, summary.Failed)
}
