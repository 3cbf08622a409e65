package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/idcard"
	"github.com/zhongxul/birthkeeper/internal/models"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

const dateLayout = "2006-01-02"

// add interactively collects a new person. When an ID card number is given
// the birthday and gender are derived from it; otherwise the birthday is
// asked for directly.
func (a *App) add(ctx context.Context) {

	p := models.Person{Reminder: models.DefaultReminderConfig()}

	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	if name == "" {
		fmt.Fprintln(a.out, "name is required")
		return
	}
	p.Name = name

	idNumber, err := GetSecret(a.reader, "Enter ID card number (optional, hidden)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	if idNumber != "" {
		parsed, err := idcard.Parse(idNumber, birthday.Normalize(time.Now().UTC()))
		if err != nil {
			fmt.Fprintln(a.out, "invalid ID card number:", err)
			return
		}
		p.IDNumber = idNumber
		p.BirthdaySolar = parsed.BirthDate
		p.Gender = parsed.Gender
		fmt.Fprintf(a.out, "Birthday %s and gender %s taken from the ID card\n",
			parsed.BirthDate.Format(dateLayout), parsed.Gender)
	} else {
		text, err := GetSimpleText(a.reader, "Enter birthday (YYYY-MM-DD)", a.out)
		if err != nil {
			fmt.Fprintln(a.out, "error:", err)
			return
		}
		born, err := time.ParseInLocation(dateLayout, text, time.UTC)
		if err != nil {
			fmt.Fprintln(a.out, "invalid birthday:", err)
			return
		}
		p.BirthdaySolar = born
	}

	p.Relation, err = GetTextOrDefault(a.reader, "Enter relation", "friend", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	p.Note, err = GetSimpleText(a.reader, "Enter note (optional)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	offsetsText, err := GetTextOrDefault(a.reader, "Remind this many days before (comma separated)",
		offsetsString(p.Reminder.Offsets), a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	offsets, err := parseOffsets(offsetsText)
	if err != nil {
		fmt.Fprintln(a.out, "invalid offsets:", err)
		return
	}
	p.Reminder.Offsets = offsets

	remindText, err := GetTextOrDefault(a.reader, "Remind at (HH:MM)", p.Reminder.RemindTime.String(), a.out)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}
	p.Reminder.RemindTime, err = timex.ParseTimeOfDay(remindText)
	if err != nil {
		fmt.Fprintln(a.out, "invalid remind time:", err)
		return
	}

	id, err := a.people.Upsert(ctx, &p)
	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return
	}

	fmt.Fprintf(a.out, "Added %s (#%d)\n", p.Name, id)
}

// parseOffsets parses a comma separated list of non-negative day offsets,
// e.g. "7,3,1,0". An empty string yields the day-of reminder only.
func parseOffsets(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{0}, nil
	}
	parts := strings.Split(s, ",")
	offsets := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("offset %q: %w", part, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("offset %d is negative", n)
		}
		offsets = append(offsets, n)
	}
	return offsets, nil
}

func offsetsString(offsets []int) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = strconv.Itoa(o)
	}
	return strings.Join(parts, ",")
}
