// Package domain contains core concepts of the chat room.
// This file defines Message events and the visibility rule.
// Only the text of a message can change after creation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindStatus         Kind = "status"
	KindMessage        Kind = "message"
	KindPrivateMessage Kind = "private_message"
)

const (
	// BroadcastTarget is the reserved recipient visible to every participant.
	BroadcastTarget = "Todos"
	JoinText        = "entered the room"
	LeaveText       = "left the room"
	// TimeLayout renders Message.Time, millisecond precision.
	TimeLayout = "2006-01-02 15:04:05.000"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindStatus, KindMessage, KindPrivateMessage:
		return true
	}
	return false
}

// Message represents a chat event.
// CreatedAt orders the log, Time is its rendered form.
type Message struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Kind      Kind      `json:"type"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"-"`
}

func NewMessage(from, to, text string, kind Kind, at time.Time) Message {
	at = at.UTC()
	return Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Text:      text,
		Kind:      kind,
		Time:      at.Format(TimeLayout),
		CreatedAt: at,
	}
}

// NewStatus builds a system notice broadcast to the whole room.
func NewStatus(name, text string, at time.Time) Message {
	return NewMessage(name, BroadcastTarget, text, KindStatus, at)
}

// VisibleTo is true when requester may read the message.
// Private messages reach only their sender and recipient.
func (m Message) VisibleTo(requester string) bool {
	return m.To == BroadcastTarget ||
		m.From == requester ||
		m.To == requester ||
		m.Kind == KindMessage
}
