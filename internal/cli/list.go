package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/cryptox"
)

func (a *App) list(ctx context.Context) {
	people, err := a.people.ListActive(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if len(people) == 0 {
		fmt.Fprintln(a.out, "No people yet. Use 'add' to track a birthday.")
		return
	}

	today := birthday.Normalize(time.Now().UTC())
	for _, p := range people {
		days := birthday.DaysUntil(p.BirthdaySolar, today)
		next := birthday.NextOccurrence(p.BirthdaySolar, today)
		fmt.Fprintf(a.out, "#%-4d %-20s %-12s next %s (in %d days)\n",
			p.ID, p.Name, p.Relation, next.Format(dateLayout), days)
	}
}

func (a *App) show(ctx context.Context, args []string) {
	id, ok := parseID(a, args, "show <id>")
	if !ok {
		return
	}

	p, err := a.people.GetByID(ctx, id)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	today := birthday.Normalize(time.Now().UTC())
	fmt.Fprintf(a.out, "Name:      %s\n", p.Name)
	fmt.Fprintf(a.out, "Relation:  %s\n", p.Relation)
	fmt.Fprintf(a.out, "Gender:    %s\n", p.Gender)
	fmt.Fprintf(a.out, "Birthday:  %s (next in %d days)\n",
		p.BirthdaySolar.Format(dateLayout), birthday.DaysUntil(p.BirthdaySolar, today))
	if p.BirthdayLunar != "" {
		fmt.Fprintf(a.out, "Lunar:     %s\n", p.BirthdayLunar)
	}
	if p.IDNumber != "" {
		fmt.Fprintf(a.out, "ID number: %s\n", cryptox.MaskIDNumber(p.IDNumber))
	}
	if p.Note != "" {
		fmt.Fprintf(a.out, "Note:      %s\n", p.Note)
	}
	fmt.Fprintf(a.out, "Reminders: %s at %s (enabled: %t)\n",
		offsetsString(p.Reminder.Offsets), p.Reminder.RemindTime, p.Reminder.Enabled)
}

func (a *App) delete(ctx context.Context, args []string) {
	id, ok := parseID(a, args, "delete <id>")
	if !ok {
		return
	}
	if err := a.people.SoftDelete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	fmt.Fprintf(a.out, "Deleted #%d\n", id)
}

func parseID(a *App, args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage:", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(a.out, "invalid id:", args[0])
		return 0, false
	}
	return id, true
}
