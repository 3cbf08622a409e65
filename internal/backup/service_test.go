package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/cryptox"
	"github.com/zhongxul/birthkeeper/internal/logging"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE person (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  id_number_encrypted TEXT,
  birthday_solar TEXT NOT NULL,
  birthday_lunar TEXT,
  gender INTEGER NOT NULL DEFAULT 0,
  relation TEXT NOT NULL DEFAULT '',
  note TEXT,
  avatar_uri TEXT,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE TABLE reminder_config (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  person_id INTEGER NOT NULL,
  offsets_json TEXT NOT NULL,
  remind_time TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1
);
CREATE UNIQUE INDEX idx_reminder_config_person ON reminder_config(person_id);
CREATE TABLE reminder_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  person_id INTEGER NOT NULL,
  target_date TEXT NOT NULL,
  offset_day INTEGER NOT NULL,
  status INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX idx_reminder_log_key ON reminder_log(person_id, target_date, offset_day);
`)
	require.NoError(t, err)
	return db
}

func newService(t *testing.T, db *sql.DB) *Service {
	t.Helper()
	return NewService(db, cryptox.NewBackupCipher(), logging.NopLogger{})
}

func seedPerson(t *testing.T, db *sql.DB, id int64, name, birthday string, updatedAt int64) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO person (id, name, birthday_solar, relation, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, 'friend', 0, ?, ?)`,
		id, name, birthday, updatedAt, updatedAt)
	require.NoError(t, err)
}

func seedConfig(t *testing.T, db *sql.DB, personID int64, offsets, remindTime string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO reminder_config (person_id, offsets_json, remind_time, enabled)
		VALUES (?, ?, ?, 1)`, personID, offsets, remindTime)
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestExportImport_OverwriteRoundTrip(t *testing.T) {
	ctx := context.Background()

	src := testDB(t)
	seedPerson(t, src, 1, "Alice", "1990-12-01", 1000)
	seedConfig(t, src, 1, "[7,3,1,0]", "09:00")
	seedPerson(t, src, 2, "Bob", "2000-02-29", 2000)
	_, err := src.Exec(`INSERT INTO reminder_log (person_id, target_date, offset_day, status, created_at)
		VALUES (1, '2026-12-01', 7, 1, 1000)`)
	require.NoError(t, err)

	payload, err := newService(t, src).Export(ctx)
	require.NoError(t, err)

	dst := testDB(t)
	seedPerson(t, dst, 9, "Stale", "1970-01-01", 1)
	_, err = dst.Exec(`INSERT INTO reminder_log (person_id, target_date, offset_day, status, created_at)
		VALUES (9, '2026-01-01', 0, 0, 1)`)
	require.NoError(t, err)

	res, err := newService(t, dst).Import(ctx, payload, ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2}, res)

	assert.Equal(t, 2, countRows(t, dst, "person"))
	assert.Equal(t, 1, countRows(t, dst, "reminder_config"))
	// Reminder logs never travel and the wipe removes local ones.
	assert.Equal(t, 0, countRows(t, dst, "reminder_log"))

	var name, offsets string
	require.NoError(t, dst.QueryRow(`SELECT name FROM person WHERE id = 1`).Scan(&name))
	assert.Equal(t, "Alice", name)
	require.NoError(t, dst.QueryRow(`SELECT offsets_json FROM reminder_config WHERE person_id = 1`).Scan(&offsets))
	assert.Equal(t, "[7,3,1,0]", offsets)
}

func TestExport_SkipsSoftDeleted(t *testing.T) {
	ctx := context.Background()
	src := testDB(t)
	seedPerson(t, src, 1, "Alice", "1990-12-01", 1000)
	_, err := src.Exec(`UPDATE person SET is_deleted = 1 WHERE id = 1`)
	require.NoError(t, err)
	seedPerson(t, src, 2, "Bob", "1991-05-05", 1000)

	svc := newService(t, src)
	payload, err := svc.Export(ctx)
	require.NoError(t, err)

	plain, err := cryptox.NewBackupCipher().Decrypt(payload)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(plain), &env))
	require.Len(t, env.People, 1)
	assert.Equal(t, "Bob", env.People[0].Name)
	assert.Equal(t, Version, env.Version)
}

func TestImport_MergeResolvesByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	dst := testDB(t)
	seedPerson(t, dst, 1, "Old Alice", "1990-12-01", 1000)
	seedPerson(t, dst, 5, "Fresh Eve", "1985-06-12", 9000)

	env := envelope{Version: Version, People: []personSnapshot{
		{ID: 1, Name: "New Alice", BirthdaySolar: "1990-12-01", Relation: "friend",
			CreatedAt: 500, UpdatedAt: 2000,
			ReminderConfig: &configSnapshot{OffsetsJSON: "[3,0]", RemindTime: "08:30", Enabled: 1}},
		{ID: 2, Name: "Bob", BirthdaySolar: "2000-02-29", Relation: "family",
			CreatedAt: 2000, UpdatedAt: 2000},
		{ID: 5, Name: "Stale Eve", BirthdaySolar: "1985-06-12", Relation: "friend",
			CreatedAt: 100, UpdatedAt: 100},
	}}
	payload := encryptEnvelope(t, env)

	res, err := newService(t, dst).Import(ctx, payload, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1, Updated: 1, Skipped: 1}, res)

	var name string
	require.NoError(t, dst.QueryRow(`SELECT name FROM person WHERE id = 1`).Scan(&name))
	assert.Equal(t, "New Alice", name)
	var remindTime string
	require.NoError(t, dst.QueryRow(`SELECT remind_time FROM reminder_config WHERE person_id = 1`).Scan(&remindTime))
	assert.Equal(t, "08:30", remindTime)

	require.NoError(t, dst.QueryRow(`SELECT name FROM person WHERE id = 5`).Scan(&name))
	assert.Equal(t, "Fresh Eve", name)
}

func TestImport_SameMergePayloadTwiceSkipsEverything(t *testing.T) {
	ctx := context.Background()
	src := testDB(t)
	seedPerson(t, src, 1, "Alice", "1990-12-01", 1000)
	seedPerson(t, src, 2, "Bob", "2000-02-29", 2000)
	payload, err := newService(t, src).Export(ctx)
	require.NoError(t, err)

	dst := testDB(t)
	svc := newService(t, dst)

	res, err := svc.Import(ctx, payload, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2}, res)

	res, err = svc.Import(ctx, payload, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
}

func TestImport_VersionMismatch(t *testing.T) {
	ctx := context.Background()
	dst := testDB(t)
	seedPerson(t, dst, 1, "Alice", "1990-12-01", 1000)

	payload := encryptEnvelope(t, envelope{Version: 2, People: []personSnapshot{
		{ID: 7, Name: "Future", BirthdaySolar: "2001-01-01", UpdatedAt: 1},
	}})

	_, err := newService(t, dst).Import(ctx, payload, ModeOverwrite)
	require.ErrorIs(t, err, common.ErrBackupVersionMismatch)
	assert.Equal(t, 1, countRows(t, dst, "person"))
}

func TestImport_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testDB(t))

	_, err := svc.Import(ctx, "definitely not a backup", ModeMerge)
	require.ErrorIs(t, err, common.ErrBackupMalformed)

	notJSON, err := cryptox.NewBackupCipher().Encrypt("hello there")
	require.NoError(t, err)
	_, err = svc.Import(ctx, notJSON, ModeMerge)
	require.ErrorIs(t, err, common.ErrBackupMalformed)
}

func TestImport_BadRecordRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	dst := testDB(t)
	seedPerson(t, dst, 9, "Survivor", "1970-01-01", 1)

	payload := encryptEnvelope(t, envelope{Version: Version, People: []personSnapshot{
		{ID: 1, Name: "Good", BirthdaySolar: "1990-12-01", UpdatedAt: 1000},
		{ID: 2, Name: "", BirthdaySolar: "1991-01-01", UpdatedAt: 1000},
	}})

	_, err := newService(t, dst).Import(ctx, payload, ModeOverwrite)
	require.ErrorIs(t, err, common.ErrBackupMalformed)

	// The overwrite wipe and the first insert were rolled back with the rest.
	assert.Equal(t, 1, countRows(t, dst, "person"))
	var name string
	require.NoError(t, dst.QueryRow(`SELECT name FROM person WHERE id = 9`).Scan(&name))
	assert.Equal(t, "Survivor", name)
}

func TestImport_RejectsInvalidSnapshots(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, testDB(t))

	cases := []struct {
		name string
		snap personSnapshot
	}{
		{"bad id", personSnapshot{ID: 0, Name: "X", BirthdaySolar: "1990-01-01"}},
		{"bad birthday", personSnapshot{ID: 1, Name: "X", BirthdaySolar: "1990-13-01"}},
		{"bad offsets", personSnapshot{ID: 1, Name: "X", BirthdaySolar: "1990-01-01",
			ReminderConfig: &configSnapshot{OffsetsJSON: "oops", RemindTime: "09:00"}}},
		{"bad remind time", personSnapshot{ID: 1, Name: "X", BirthdaySolar: "1990-01-01",
			ReminderConfig: &configSnapshot{OffsetsJSON: "[0]", RemindTime: "25:99"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := encryptEnvelope(t, envelope{Version: Version, People: []personSnapshot{tc.snap}})
			_, err := svc.Import(ctx, payload, ModeMerge)
			require.ErrorIs(t, err, common.ErrBackupMalformed)
		})
	}
}

func TestImport_UnknownMode(t *testing.T) {
	svc := newService(t, testDB(t))
	_, err := svc.Import(context.Background(), "x", Mode("append"))
	require.Error(t, err)
}

func encryptEnvelope(t *testing.T, env envelope) string {
	t.Helper()
	plain, err := json.Marshal(env)
	require.NoError(t, err)
	payload, err := cryptox.NewBackupCipher().Encrypt(string(plain))
	require.NoError(t, err)
	return payload
}

func TestFileTarget_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	target := NewFileTarget(filepath.Join(dir, "backups"))

	name := DefaultName(time.Date(2026, 2, 13, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, "birthkeeper-20260213-150405.bak", name)

	location, err := target.Put(ctx, name, "sealed payload")
	require.NoError(t, err)

	info, err := os.Stat(location)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := target.Get(ctx, location)
	require.NoError(t, err)
	assert.Equal(t, "sealed payload", got)

	// Relative names resolve against the target directory.
	got, err = target.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "sealed payload", got)
}

func TestFileTarget_GetMissing(t *testing.T) {
	target := NewFileTarget(t.TempDir())
	_, err := target.Get(context.Background(), "nope.bak")
	require.Error(t, err)
}
