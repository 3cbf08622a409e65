package persons

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zhongxul/birthkeeper/internal/birthday"
	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/dbx"
	"github.com/zhongxul/birthkeeper/internal/models"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

const dateLayout = "2006-01-02"

// CipherFunc transforms an ID number between its plaintext and at-rest forms.
// Implementations must degrade gracefully (return the input on failure).
type CipherFunc func(string) string

type SQLiteRepository struct {
	db      *sql.DB
	encrypt CipherFunc
	decrypt CipherFunc
}

// NewSQLiteRepository wires the repository to db. encrypt/decrypt guard the
// ID-number confidentiality boundary; pass nil for identity (tests).
func NewSQLiteRepository(db *sql.DB, encrypt, decrypt CipherFunc) *SQLiteRepository {
	identity := func(s string) string { return s }
	if encrypt == nil {
		encrypt = identity
	}
	if decrypt == nil {
		decrypt = identity
	}
	return &SQLiteRepository{db: db, encrypt: encrypt, decrypt: decrypt}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Person) (int64, error) {
	if p.Name == "" {
		return 0, fmt.Errorf("upsert person: name must not be empty")
	}

	cfg := p.Reminder
	cfg.Normalize()
	offsetsJSON, err := json.Marshal(cfg.Offsets)
	if err != nil {
		return 0, fmt.Errorf("marshal offsets: %w", err)
	}

	now := time.Now().UnixMilli()
	createdAt := p.CreatedAt
	if p.ID == 0 {
		createdAt = now
	}
	encryptedID := r.encrypt(p.IDNumber)

	var personID int64
	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if p.ID == 0 {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO person (name, id_number_encrypted, birthday_solar, birthday_lunar,
				                    gender, relation, note, avatar_uri, is_deleted, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
				p.Name, encryptedID, p.BirthdaySolar.Format(dateLayout), p.BirthdayLunar,
				int(p.Gender), p.Relation, p.Note, p.AvatarURI, createdAt, now)
			if err != nil {
				return fmt.Errorf("insert person: %w", err)
			}
			personID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("person id: %w", err)
			}
		} else {
			personID = p.ID
			_, err := tx.ExecContext(ctx, `
				UPDATE person SET name = ?, id_number_encrypted = ?, birthday_solar = ?,
				       birthday_lunar = ?, gender = ?, relation = ?, note = ?, avatar_uri = ?,
				       updated_at = ?
				WHERE id = ?`,
				p.Name, encryptedID, p.BirthdaySolar.Format(dateLayout), p.BirthdayLunar,
				int(p.Gender), p.Relation, p.Note, p.AvatarURI, now, personID)
			if err != nil {
				return fmt.Errorf("update person: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO reminder_config (person_id, offsets_json, remind_time, enabled)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(person_id) DO UPDATE SET
			  offsets_json = excluded.offsets_json,
			  remind_time = excluded.remind_time,
			  enabled = excluded.enabled`,
			personID, string(offsetsJSON), cfg.RemindTime.String(), boolToInt(cfg.Enabled))
		if err != nil {
			return fmt.Errorf("upsert reminder config: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	p.ID = personID
	p.CreatedAt = createdAt
	p.UpdatedAt = now
	return personID, nil
}

const selectPerson = `
	SELECT p.id, p.name, p.id_number_encrypted, p.birthday_solar, p.birthday_lunar,
	       p.gender, p.relation, p.note, p.avatar_uri, p.is_deleted, p.created_at, p.updated_at,
	       c.offsets_json, c.remind_time, c.enabled
	FROM person p
	LEFT JOIN reminder_config c ON c.person_id = p.id`

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	row := r.db.QueryRowContext(ctx, selectPerson+` WHERE p.is_deleted = 0 AND p.id = ?`, id)

	p, err := r.scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context) ([]models.Person, error) {
	rows, err := r.db.QueryContext(ctx, selectPerson+` WHERE p.is_deleted = 0 ORDER BY p.birthday_solar ASC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var result []models.Person
	for rows.Next() {
		p, err := r.scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UnixMilli()
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE person SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`, now, id)
		if err != nil {
			return fmt.Errorf("soft delete person %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return common.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_config WHERE person_id = ?`, id); err != nil {
			return fmt.Errorf("delete reminder config %d: %w", id, err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepository) scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p                             models.Person
		idNumber, lunar, note, avatar sql.NullString
		gender, deleted               int
		born                          string
		offsetsJSON, remindTime       sql.NullString
		enabled                       sql.NullInt64
	)

	err := row.Scan(&p.ID, &p.Name, &idNumber, &born, &lunar, &gender, &p.Relation,
		&note, &avatar, &deleted, &p.CreatedAt, &p.UpdatedAt,
		&offsetsJSON, &remindTime, &enabled)
	if err != nil {
		return nil, err
	}

	birthdaySolar, err := time.ParseInLocation(dateLayout, born, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse birthday %q: %w", born, err)
	}
	p.BirthdaySolar = birthday.Normalize(birthdaySolar)
	p.IDNumber = r.decrypt(idNumber.String)
	p.BirthdayLunar = lunar.String
	p.Gender = models.Gender(gender)
	p.Note = note.String
	p.AvatarURI = avatar.String
	p.IsDeleted = deleted != 0
	p.Reminder = models.DefaultReminderConfig()

	if offsetsJSON.Valid {
		var offsets []int
		if err := json.Unmarshal([]byte(offsetsJSON.String), &offsets); err != nil {
			return nil, fmt.Errorf("parse offsets %q: %w", offsetsJSON.String, err)
		}
		tod, err := timex.ParseTimeOfDay(remindTime.String)
		if err != nil {
			return nil, err
		}
		p.Reminder = models.ReminderConfig{
			Offsets:    offsets,
			RemindTime: tod,
			Enabled:    enabled.Int64 != 0,
		}
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
