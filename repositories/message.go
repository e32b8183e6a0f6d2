//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-room/domain"
	"chat-room/errors"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

const (
	messagePrefix = "msg:"
	messageIndex  = "msg-id:"
)

// MessageFilter selects the messages returned by GetMessages.
type MessageFilter func(message domain.Message) bool

type IMessageRepository interface {
	StoreMessage(message domain.Message) error
	StoreMessages(messages []domain.Message) error
	GetMessage(id uuid.UUID) (domain.Message, error)
	GetMessages(filter MessageFilter, limit int) ([]domain.Message, error)
	UpdateText(id uuid.UUID, text string) error
	DeleteMessage(id uuid.UUID) error
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type DiskMessage struct {
	ID   string `cbor:"1,keyasint"`
	From string `cbor:"2,keyasint"`
	To   string `cbor:"3,keyasint"`
	Text string `cbor:"4,keyasint"`
	Kind string `cbor:"5,keyasint"`
	At   int64  `cbor:"6,keyasint"`
}

// messageKey is formatted as "msg:{timestamp_padded}:{ordinal}:{uuid}":
//  1. 19-digit zero padding keeps lexicographical order chronological.
//  2. The ordinal keeps the order of a batch written with the same timestamp.
//  3. The UUID separates two messages stored in the same nanosecond.
func messageKey(message domain.Message, ordinal int) []byte {
	return []byte(fmt.Sprintf("%s%019d:%04d:%s",
		messagePrefix,
		message.CreatedAt.UnixNano(),
		ordinal,
		message.ID,
	))
}

// indexKey points from "msg-id:{uuid}" to the ordered key of the message.
func indexKey(id uuid.UUID) []byte {
	return []byte(messageIndex + id.String())
}

func (m MessageRepository) StoreMessage(message domain.Message) error {
	return m.StoreMessages([]domain.Message{message})
}

// StoreMessages appends all messages in one transaction, in slice order.
func (m MessageRepository) StoreMessages(messages []domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return m.db.Update(func(txn *badger.Txn) error {
		for i, message := range messages {
			bytes, err := cbor.Marshal(fromMessage(message))
			if err != nil {
				return err
			}
			key := messageKey(message, i)
			if err = txn.Set(key, bytes); err != nil {
				return err
			}
			if err = txn.Set(indexKey(message.ID), key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		_, msg, err := readMessage(txn, id)
		message = msg
		return err
	})
	return message, err
}

// GetMessages walks the log from the newest message backwards, keeps those
// accepted by filter and stops once limit messages are collected (limit <= 0
// means no limit). The result is returned oldest first.
func (m MessageRepository) GetMessages(filter MessageFilter, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the greatest key <= seek key
		seekKey := append([]byte(messagePrefix), 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			var row DiskMessage
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &row)
			})
			if err != nil {
				return err
			}
			message, err := toMessage(row)
			if err != nil {
				return err
			}
			if filter == nil || filter(message) {
				messages = append(messages, message)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

// UpdateText replaces the text of a message, nothing else.
func (m MessageRepository) UpdateText(id uuid.UUID, text string) error {
	return updateWithRetry(m.db, func(txn *badger.Txn) error {
		key, message, err := readMessage(txn, id)
		if err != nil {
			return err
		}
		message.Text = text
		bytes, err := cbor.Marshal(fromMessage(message))
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	})
}

func (m MessageRepository) DeleteMessage(id uuid.UUID) error {
	return updateWithRetry(m.db, func(txn *badger.Txn) error {
		key, _, err := readMessage(txn, id)
		if err != nil {
			return err
		}
		if err = txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(indexKey(id))
	})
}

// readMessage resolves the index entry and returns the ordered key with its message.
func readMessage(txn *badger.Txn, id uuid.UUID) ([]byte, domain.Message, error) {
	item, err := txn.Get(indexKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, fmt.Errorf("message %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	key, err := item.ValueCopy(nil)
	if err != nil {
		return nil, domain.Message{}, err
	}
	item, err = txn.Get(key)
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.Message{}, fmt.Errorf("message %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Message{}, err
	}
	var row DiskMessage
	if err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &row)
	}); err != nil {
		return nil, domain.Message{}, err
	}
	message, err := toMessage(row)
	return key, message, err
}

func fromMessage(message domain.Message) DiskMessage {
	return DiskMessage{
		ID:   message.ID.String(),
		From: message.From,
		To:   message.To,
		Text: message.Text,
		Kind: string(message.Kind),
		At:   message.CreatedAt.UnixNano(),
	}
}

func toMessage(row DiskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Message{}, err
	}
	kind := domain.Kind(row.Kind)
	if !kind.IsValid() {
		return domain.Message{}, fmt.Errorf("message %s: unknown kind %q", row.ID, row.Kind)
	}
	at := time.Unix(0, row.At).UTC()
	return domain.Message{
		ID:        parsedID,
		From:      row.From,
		To:        row.To,
		Text:      row.Text,
		Kind:      kind,
		Time:      at.Format(domain.TimeLayout),
		CreatedAt: at,
	}, nil
}
