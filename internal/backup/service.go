// Package backup implements the encrypted export/import of the full person
// dataset: a versioned JSON envelope sealed by the backup cipher, applied
// transactionally on import.
package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/cryptox"
	"github.com/zhongxul/birthkeeper/internal/dbx"
	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/timex"
)

// Version is the backup envelope version. Import requires an exact match;
// there are no compatibility shims.
const Version = 1

// Mode selects how an import treats existing data.
type Mode string

const (
	// ModeOverwrite wipes people, reminder configs and reminder logs before
	// inserting every incoming record.
	ModeOverwrite Mode = "overwrite"
	// ModeMerge keeps existing data and resolves conflicts per person by
	// updatedAt.
	ModeMerge Mode = "merge"
)

// Result counts what an import did.
type Result struct {
	Imported int
	Updated  int
	Skipped  int
}

type envelope struct {
	Version    int              `json:"version"`
	ExportedAt int64            `json:"exportedAt"`
	People     []personSnapshot `json:"people"`
}

// personSnapshot is the portable form of a person. The ID number stays in
// its at-rest encrypted form; reminder logs never travel.
type personSnapshot struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	IDNumberEncrypted string          `json:"idNumberEncrypted,omitempty"`
	BirthdaySolar     string          `json:"birthdaySolar"`
	BirthdayLunar     string          `json:"birthdayLunar,omitempty"`
	Gender            int             `json:"gender"`
	Relation          string          `json:"relation"`
	Note              string          `json:"note,omitempty"`
	AvatarURI         string          `json:"avatarUri,omitempty"`
	IsDeleted         int             `json:"isDeleted"`
	CreatedAt         int64           `json:"createdAt"`
	UpdatedAt         int64           `json:"updatedAt"`
	ReminderConfig    *configSnapshot `json:"reminderConfig,omitempty"`
}

type configSnapshot struct {
	OffsetsJSON string `json:"offsetsJson"`
	RemindTime  string `json:"remindTime"`
	Enabled     int    `json:"enabled"`
}

const dateLayout = "2006-01-02"

// Service snapshots and restores the person dataset. It works on the raw
// tables directly so the whole import fits in one transaction.
type Service struct {
	db     *sql.DB
	cipher *cryptox.BackupCipher
	log    logging.Logger
}

func NewService(db *sql.DB, cipher *cryptox.BackupCipher, log logging.Logger) *Service {
	return &Service{db: db, cipher: cipher, log: log.With("component", "backup")}
}

// Export snapshots all non-deleted people with their reminder configuration
// into an encrypted, transport-safe string.
func (s *Service) Export(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.id_number_encrypted, p.birthday_solar, p.birthday_lunar,
		       p.gender, p.relation, p.note, p.avatar_uri, p.is_deleted, p.created_at, p.updated_at,
		       c.offsets_json, c.remind_time, c.enabled
		FROM person p
		LEFT JOIN reminder_config c ON c.person_id = p.id
		WHERE p.is_deleted = 0
		ORDER BY p.id ASC`)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	defer rows.Close()

	env := envelope{Version: Version, ExportedAt: time.Now().UnixMilli(), People: []personSnapshot{}}
	for rows.Next() {
		var (
			snap                          personSnapshot
			idNumber, lunar, note, avatar sql.NullString
			offsets, remindTime           sql.NullString
			enabled                       sql.NullInt64
		)
		err := rows.Scan(&snap.ID, &snap.Name, &idNumber, &snap.BirthdaySolar, &lunar,
			&snap.Gender, &snap.Relation, &note, &avatar, &snap.IsDeleted,
			&snap.CreatedAt, &snap.UpdatedAt, &offsets, &remindTime, &enabled)
		if err != nil {
			return "", fmt.Errorf("export: scan person: %w", err)
		}
		snap.IDNumberEncrypted = idNumber.String
		snap.BirthdayLunar = lunar.String
		snap.Note = note.String
		snap.AvatarURI = avatar.String
		if offsets.Valid {
			snap.ReminderConfig = &configSnapshot{
				OffsetsJSON: offsets.String,
				RemindTime:  remindTime.String,
				Enabled:     int(enabled.Int64),
			}
		}
		env.People = append(env.People, snap)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	plain, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("export: marshal envelope: %w", err)
	}
	payload, err := s.cipher.Encrypt(string(plain))
	if err != nil {
		return "", fmt.Errorf("export: encrypt envelope: %w", err)
	}

	s.log.Info(ctx, "backup exported", "people", len(env.People))
	return payload, nil
}

// Import decrypts and applies a backup payload. The write phase runs in a
// single transaction: either every record lands or none does.
func (s *Service) Import(ctx context.Context, payload string, mode Mode) (Result, error) {
	if mode != ModeOverwrite && mode != ModeMerge {
		return Result{}, fmt.Errorf("unknown import mode %q", mode)
	}

	plain, err := s.cipher.Decrypt(payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrBackupMalformed, err)
	}

	var env envelope
	if err := json.Unmarshal([]byte(plain), &env); err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrBackupMalformed, err)
	}
	if env.Version != Version {
		return Result{}, fmt.Errorf("%w: got %d, want %d", common.ErrBackupVersionMismatch, env.Version, Version)
	}

	var result Result
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if mode == ModeOverwrite {
			for _, stmt := range []string{
				`DELETE FROM reminder_log`,
				`DELETE FROM reminder_config`,
				`DELETE FROM person`,
			} {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("wipe before overwrite: %w", err)
				}
			}
		}

		for _, snap := range env.People {
			if err := validateSnapshot(snap); err != nil {
				return err
			}

			var existingUpdatedAt sql.NullInt64
			exists := false
			if mode == ModeMerge {
				err := tx.QueryRowContext(ctx, `SELECT updated_at FROM person WHERE id = ?`, snap.ID).Scan(&existingUpdatedAt)
				switch {
				case errors.Is(err, sql.ErrNoRows):
				case err != nil:
					return fmt.Errorf("lookup person %d: %w", snap.ID, err)
				default:
					exists = true
				}
			}

			if exists && snap.UpdatedAt <= existingUpdatedAt.Int64 {
				result.Skipped++
				continue
			}

			if err := writeSnapshot(ctx, tx, snap); err != nil {
				return err
			}

			if exists {
				result.Updated++
			} else {
				result.Imported++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.log.Info(ctx, "backup imported", "mode", string(mode),
		"imported", result.Imported, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func validateSnapshot(snap personSnapshot) error {
	if snap.ID <= 0 {
		return fmt.Errorf("%w: person id %d", common.ErrBackupMalformed, snap.ID)
	}
	if snap.Name == "" {
		return fmt.Errorf("%w: person %d has empty name", common.ErrBackupMalformed, snap.ID)
	}
	if _, err := time.ParseInLocation(dateLayout, snap.BirthdaySolar, time.UTC); err != nil {
		return fmt.Errorf("%w: person %d birthday %q", common.ErrBackupMalformed, snap.ID, snap.BirthdaySolar)
	}
	if c := snap.ReminderConfig; c != nil {
		var offsets []int
		if err := json.Unmarshal([]byte(c.OffsetsJSON), &offsets); err != nil {
			return fmt.Errorf("%w: person %d offsets %q", common.ErrBackupMalformed, snap.ID, c.OffsetsJSON)
		}
		if _, err := timex.ParseTimeOfDay(c.RemindTime); err != nil {
			return fmt.Errorf("%w: person %d remind time %q", common.ErrBackupMalformed, snap.ID, c.RemindTime)
		}
	}
	return nil
}

func writeSnapshot(ctx context.Context, tx dbx.DBTX, snap personSnapshot) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO person (id, name, id_number_encrypted, birthday_solar, birthday_lunar,
		                    gender, relation, note, avatar_uri, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  id_number_encrypted = excluded.id_number_encrypted,
		  birthday_solar = excluded.birthday_solar,
		  birthday_lunar = excluded.birthday_lunar,
		  gender = excluded.gender,
		  relation = excluded.relation,
		  note = excluded.note,
		  avatar_uri = excluded.avatar_uri,
		  is_deleted = excluded.is_deleted,
		  created_at = excluded.created_at,
		  updated_at = excluded.updated_at`,
		snap.ID, snap.Name, snap.IDNumberEncrypted, snap.BirthdaySolar, snap.BirthdayLunar,
		snap.Gender, snap.Relation, snap.Note, snap.AvatarURI, snap.IsDeleted,
		snap.CreatedAt, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("write person %d: %w", snap.ID, err)
	}

	if snap.ReminderConfig == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_config WHERE person_id = ?`, snap.ID); err != nil {
			return fmt.Errorf("clear config for person %d: %w", snap.ID, err)
		}
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reminder_config (person_id, offsets_json, remind_time, enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(person_id) DO UPDATE SET
		  offsets_json = excluded.offsets_json,
		  remind_time = excluded.remind_time,
		  enabled = excluded.enabled`,
		snap.ID, snap.ReminderConfig.OffsetsJSON, snap.ReminderConfig.RemindTime, snap.ReminderConfig.Enabled)
	if err != nil {
		return fmt.Errorf("write config for person %d: %w", snap.ID, err)
	}
	return nil
}
