package models

import "time"

// Status is the lifecycle state of one reminder occurrence. The persisted
// ordinal encoding lives in the reminder log repository, not here.
type Status int

const (
	StatusPlanned Status = iota
	StatusSent
	StatusClicked
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusPlanned:
		return "planned"
	case StatusSent:
		return "sent"
	case StatusClicked:
		return "clicked"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// edge. The lifecycle is forward-only except the explicit DONE -> CLICKED
// reopen edge.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPlanned:
		return next == StatusSent
	case StatusSent:
		return next == StatusClicked
	case StatusClicked:
		return next == StatusDone
	case StatusDone:
		return next == StatusClicked
	default:
		return false
	}
}

// ReminderLog is one concrete reminder occurrence, keyed by
// (PersonID, TargetDate, OffsetDay).
type ReminderLog struct {
	ID         int64
	PersonID   int64
	TargetDate time.Time // date only, UTC midnight
	OffsetDay  int
	Status     Status
	CreatedAt  int64 // epoch millis, immutable
}
