package cli

import (
	"context"
	"fmt"

	"github.com/zhongxul/birthkeeper/internal/models"
)

func (a *App) listLogs(ctx context.Context) {
	logs, err := a.logs.ListAll(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "No reminders yet.")
		return
	}
	for _, l := range logs {
		fmt.Fprintf(a.out, "#%-4d person %-4d %s offset %-2d %s\n",
			l.ID, l.PersonID, l.TargetDate.Format(dateLayout), l.OffsetDay, l.Status)
	}
}

// transition applies a user-driven lifecycle change to a reminder:
// "click" acknowledges a sent reminder, "done" closes a clicked one and
// "reopen" brings a closed one back.
func (a *App) transition(ctx context.Context, cmd string, args []string) {
	id, ok := parseID(a, args, cmd+" <log-id>")
	if !ok {
		return
	}

	var target models.Status
	switch cmd {
	case "click", "reopen":
		target = models.StatusClicked
	case "done":
		target = models.StatusDone
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		return
	}

	if err := a.logs.Transition(ctx, id, target); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintf(a.out, "Reminder #%d is now %s\n", id, target)
}
