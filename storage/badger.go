// Package storage owns the Badger lifecycle shared by the repositories.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Open opens the Badger directory at path. Badger's own logs go through log,
// at debug level when log has debug enabled and at warning level otherwise.
func Open(path string, log *slog.Logger, readOnly bool) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log: log.With("component", "badger")}).
		WithReadOnly(readOnly)

	if log.Enabled(context.Background(), slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	if readOnly {
		// Lets an inspector read while the server holds the lock
		options = options.WithBypassLockGuard(true)
	}
	return badger.Open(options)
}

// badgerLogger redirects Badger's printf-style logging to slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
