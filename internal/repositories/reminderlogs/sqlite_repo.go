package reminderlogs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/models"
)

const dateLayout = "2006-01-02"

// Persisted status ordinals. This mapping is the only place the integer
// encoding exists; reordering the domain enum must not change these values.
func statusToDB(s models.Status) (int, error) {
	switch s {
	case models.StatusPlanned:
		return 0, nil
	case models.StatusSent:
		return 1, nil
	case models.StatusClicked:
		return 2, nil
	case models.StatusDone:
		return 3, nil
	default:
		return 0, fmt.Errorf("unknown status %d", int(s))
	}
}

func statusFromDB(v int) (models.Status, error) {
	switch v {
	case 0:
		return models.StatusPlanned, nil
	case 1:
		return models.StatusSent, nil
	case 2:
		return models.StatusClicked, nil
	case 3:
		return models.StatusDone, nil
	default:
		return 0, fmt.Errorf("unknown persisted status %d", v)
	}
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) EnsureLog(ctx context.Context, personID int64, targetDate time.Time, offsetDay int) (*models.ReminderLog, error) {
	date := birthday.Normalize(targetDate).Format(dateLayout)

	// The unique index on (person_id, target_date, offset_day) carries the
	// race: the insert is a no-op when another caller got there first, and
	// the re-read below returns the single surviving row either way.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_log (person_id, target_date, offset_day, status, created_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(person_id, target_date, offset_day) DO NOTHING`,
		personID, date, offsetDay, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("ensure reminder log: %w", err)
	}

	log, err := r.FindByKey(ctx, personID, targetDate, offsetDay)
	if err != nil {
		return nil, fmt.Errorf("ensure reminder log: %w", err)
	}
	return log, nil
}

func (r *SQLiteRepository) Transition(ctx context.Context, logID int64, newStatus models.Status) error {
	newDB, err := statusToDB(newStatus)
	if err != nil {
		return err
	}

	var currentDB int
	err = r.db.QueryRowContext(ctx, `SELECT status FROM reminder_log WHERE id = ?`, logID).Scan(&currentDB)
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read reminder log %d: %w", logID, err)
	}

	current, err := statusFromDB(currentDB)
	if err != nil {
		return err
	}
	if current == newStatus {
		return nil
	}
	if !current.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", common.ErrIllegalTransition, current, newStatus)
	}

	// Guard on the status we just read so a racing transition cannot slip a
	// backward edge through.
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminder_log SET status = ? WHERE id = ? AND status = ?`, newDB, logID, currentDB)
	if err != nil {
		return fmt.Errorf("transition reminder log %d: %w", logID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s -> %s (lost race)", common.ErrIllegalTransition, current, newStatus)
	}
	return nil
}

func (r *SQLiteRepository) FindByKey(ctx context.Context, personID int64, targetDate time.Time, offsetDay int) (*models.ReminderLog, error) {
	date := birthday.Normalize(targetDate).Format(dateLayout)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, person_id, target_date, offset_day, status, created_at
		FROM reminder_log
		WHERE person_id = ? AND target_date = ? AND offset_day = ?`,
		personID, date, offsetDay)

	log, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reminder log: %w", err)
	}
	return log, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]models.ReminderLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, person_id, target_date, offset_day, status, created_at
		FROM reminder_log
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reminder logs: %w", err)
	}
	defer rows.Close()

	var result []models.ReminderLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder log: %w", err)
		}
		result = append(result, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reminder_log`); err != nil {
		return fmt.Errorf("delete reminder logs: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*models.ReminderLog, error) {
	var (
		log      models.ReminderLog
		date     string
		statusDB int
	)
	if err := row.Scan(&log.ID, &log.PersonID, &date, &log.OffsetDay, &statusDB, &log.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse target date %q: %w", date, err)
	}
	log.TargetDate = parsed
	log.Status, err = statusFromDB(statusDB)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
