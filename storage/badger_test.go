package storage

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func TestOpen_ReadWriteThenReadOnly(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	db, err := Open(dir, log, false)
	req.NoError(err)
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("participant:Alice"), []byte("x"))
	}))
	req.NoError(db.Close())

	ro, err := Open(dir, log, true)
	req.NoError(err)
	defer ro.Close()
	req.NoError(ro.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("participant:Alice"))
		return err
	}))
}

func TestBadgerLogger(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	l := badgerLogger{log: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Warningf("value log %d truncated", 3)
	l.Debugf("compaction %s", "done")

	req.Contains(buf.String(), "level=WARN")
	req.Contains(buf.String(), "value log 3 truncated")
	req.Contains(buf.String(), "compaction done")
}
