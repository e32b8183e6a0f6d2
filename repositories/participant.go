//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	Create(participant domain.Participant) error
	Get(name string) (domain.Participant, error)
	List() ([]domain.Participant, error)
	Touch(name string, at time.Time) error
	Delete(name string) error
	DeleteMany(names []string) error
}

type ParticipantRepository struct {
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) ParticipantRepository {
	return ParticipantRepository{db: db}
}

// DiskParticipant is the CBOR row stored under "participant:{name}".
type DiskParticipant struct {
	Name       string `cbor:"1,keyasint"`
	LastStatus int64  `cbor:"2,keyasint"`
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Create inserts the participant unless the name is already taken.
// The existence check and the write share one transaction, so two concurrent
// joins with the same name cannot both succeed: Badger aborts the loser with
// ErrConflict on commit, which is reported as errors.ErrConflict as well.
func (r ParticipantRepository) Create(participant domain.Participant) error {
	bytes, err := cbor.Marshal(fromParticipant(participant))
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(participant.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrConflict
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, bytes)
	})
	if stderrors.Is(err, badger.ErrConflict) {
		return errors.ErrConflict
	}
	return err
}

func (r ParticipantRepository) Get(name string) (domain.Participant, error) {
	var participant domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		p, err := readParticipant(txn, name)
		participant = p
		return err
	})
	return participant, err
}

func (r ParticipantRepository) List() ([]domain.Participant, error) {
	var rows []DiskParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row DiskParticipant
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &row)
			})
			if err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row DiskParticipant, _ int) domain.Participant {
		return toParticipant(row)
	}), nil
}

// Touch sets LastStatus of an existing participant.
func (r ParticipantRepository) Touch(name string, at time.Time) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		participant, err := readParticipant(txn, name)
		if err != nil {
			return err
		}
		participant.LastStatus = at
		bytes, err := cbor.Marshal(fromParticipant(participant))
		if err != nil {
			return err
		}
		return txn.Set(participantKey(name), bytes)
	})
}

func (r ParticipantRepository) Delete(name string) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		if _, err := readParticipant(txn, name); err != nil {
			return err
		}
		return txn.Delete(participantKey(name))
	})
}

// DeleteMany removes all the given participants in a single transaction.
// Unknown names are ignored.
func (r ParticipantRepository) DeleteMany(names []string) error {
	if len(names) == 0 {
		return nil
	}
	return r.db.Update(func(txn *badger.Txn) error {
		for _, name := range names {
			if err := txn.Delete(participantKey(name)); err != nil {
				return err
			}
		}
		return nil
	})
}

func readParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	item, err := txn.Get(participantKey(name))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Participant{}, fmt.Errorf("participant %q: %w", name, errors.ErrNotFound)
	}
	if err != nil {
		return domain.Participant{}, err
	}
	var row DiskParticipant
	if err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &row)
	}); err != nil {
		return domain.Participant{}, err
	}
	return toParticipant(row), nil
}

func fromParticipant(participant domain.Participant) DiskParticipant {
	return DiskParticipant{
		Name:       participant.Name,
		LastStatus: participant.LastStatus.UnixNano(),
	}
}

func toParticipant(row DiskParticipant) domain.Participant {
	return domain.Participant{
		Name:       row.Name,
		LastStatus: time.Unix(0, row.LastStatus).UTC(),
	}
}
