package reminder

import (
	"context"
	"fmt"

	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/models"
)

// Notification is one displayable reminder. LogID doubles as the stable
// platform notification identity; tapping the notification must hand LogID
// and PersonID back to the application entry point.
type Notification struct {
	LogID    int64
	PersonID int64
	Title    string
	Body     string
}

// Notifier delivers notifications to the platform. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// BuildNotification renders the reminder text for a person and occurrence.
func BuildNotification(p models.Person, c Candidate, logID int64) Notification {
	title := fmt.Sprintf("%s's birthday is in %d days", p.Name, c.OffsetDay)
	if c.OffsetDay == 0 {
		title = fmt.Sprintf("Today is %s's birthday", p.Name)
	}
	body := fmt.Sprintf("Relation: %s, birthday: %s", p.Relation, c.TargetDate.Format("2006-01-02"))
	return Notification{
		LogID:    logID,
		PersonID: p.ID,
		Title:    title,
		Body:     body,
	}
}

// LogNotifier writes notifications to the structured log. It stands in for a
// platform notification surface in the CLI build.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, notification Notification) error {
	n.log.Info(ctx, "reminder notification",
		"log_id", notification.LogID,
		"person_id", notification.PersonID,
		"title", notification.Title,
		"body", notification.Body,
	)
	return nil
}
