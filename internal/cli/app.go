// Package cli is the interactive front end: a small REPL over the person
// repository, the reminder scheduler and the backup service.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhongxul/birthkeeper/internal/backup"
	"github.com/zhongxul/birthkeeper/internal/config"
	"github.com/zhongxul/birthkeeper/internal/cryptox"
	"github.com/zhongxul/birthkeeper/internal/logging"
	"github.com/zhongxul/birthkeeper/internal/reminder"
	"github.com/zhongxul/birthkeeper/internal/repositories/persons"
	"github.com/zhongxul/birthkeeper/internal/repositories/reminderlogs"
	"github.com/zhongxul/birthkeeper/internal/timex"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	people    persons.Repository
	logs      reminderlogs.Repository
	backups   *backup.Service
	target    backup.Target
	exact     *reminder.TimerScheduler
	scheduler *reminder.Scheduler
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	idCipher, err := cryptox.NewIDNumberCipher(c.IDNumberKeyPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	people := persons.NewSQLiteRepository(db, idCipher.Encrypt, idCipher.Decrypt)
	logs := reminderlogs.NewSQLiteRepository(db)

	clock := timex.SystemClock{}
	notifier := reminder.NewLogNotifier(log)
	exact := reminder.NewTimerScheduler(notifier, logs, log)
	scanner := reminder.NewScanner(people, logs, notifier, exact, clock, log, c.NotificationsEnabled)
	scheduler := reminder.NewScheduler(scanner, c.ScanAnchor, c.ScanInterval, clock, log)

	var target backup.Target
	if c.S3Bucket != "" {
		target, err = backup.NewS3Target(ctx, backup.S3Config{
			Region:       c.S3Region,
			Bucket:       c.S3Bucket,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	} else {
		target = backup.NewFileTarget(c.BackupDir)
	}

	return &App{
		config:    c,
		log:       log,
		db:        db,
		people:    people,
		logs:      logs,
		backups:   backup.NewService(db, cryptox.NewBackupCipher(), log),
		target:    target,
		exact:     exact,
		scheduler: scheduler,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the background scheduler and hands control to the REPL. It
// returns once the user exits or a termination signal arrives; background
// work is stopped before returning.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)
	a.scheduler.Start()
	defer a.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Root(ctx)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.log.Info(ctx, "shutting down")
	}
}

func (a *App) Close() {
	a.scheduler.Stop()
	a.exact.Stop()
	_ = a.db.Close()
}
