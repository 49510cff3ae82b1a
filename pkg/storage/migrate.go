package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"userdir"
	"userdir/pkg/logger"

	"github.com/pressly/goose/v3"
)

// Goose dialect names accepted by Migrate.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// gooseMu guards goose's package level dialect, base FS and logger.
var gooseMu sync.Mutex //nolint: gochecknoglobals

// Migrate applies all pending embedded migrations to db using the given goose dialect.
func Migrate(ctx context.Context, db *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(userdir.Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("could not set goose dialect to %s: %w", dialect, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("could not apply migrations: %w", err)
	}

	return nil
}

// gooseLogger routes goose output through the context logger.
type gooseLogger struct {
	ctx context.Context //nolint: containedctx
}

func (l gooseLogger) Printf(format string, v ...any) {
	logger.Slog(l.ctx).Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level and panics; it never exits the process.
func (l gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	logger.Slog(l.ctx).Error(msg)
	panic("goose: " + msg)
}
