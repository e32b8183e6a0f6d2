package repositories

import (
	stderrors "errors"
	"math/rand/v2"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	maxConflictRetries = 64
	conflictBackoff    = time.Millisecond
)

// updateWithRetry runs fn in a read-write transaction and replays it when
// Badger aborts the commit because a concurrent transaction touched the same
// keys. The replay re-reads state, so it ends in success or a fresh read error.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := range maxConflictRetries {
		if err = db.Update(fn); !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(rand.N(time.Duration(min(attempt+1, 8)) * conflictBackoff))
	}
	return err
}
