package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMessage_VisibleTo(t *testing.T) {
	at := time.Now()
	tests := []struct {
		name      string
		message   Message
		requester string
		visible   bool
	}{
		{"broadcast status", NewStatus("Alice", JoinText, at), "Clara", true},
		{"public message to someone else", NewMessage("Alice", "Bob", "hi", KindMessage, at), "Clara", true},
		{"private message to someone else", NewMessage("Alice", "Bob", "psst", KindPrivateMessage, at), "Clara", false},
		{"private message to requester", NewMessage("Alice", "Bob", "psst", KindPrivateMessage, at), "Bob", true},
		{"private message from requester", NewMessage("Alice", "Bob", "psst", KindPrivateMessage, at), "Alice", true},
		{"private message to everyone", NewMessage("Alice", BroadcastTarget, "all", KindPrivateMessage, at), "Clara", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.visible, tt.message.VisibleTo(tt.requester))
		})
	}
}

func TestNewMessage(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	m := NewStatus("Alice", LeaveText, at)

	req.Equal("2024-01-02 03:04:05.006", m.Time)
	req.Equal(BroadcastTarget, m.To)
	req.Equal(KindStatus, m.Kind)
	req.NotEqual(NewStatus("Alice", LeaveText, at).ID, m.ID)
}

func TestKind_IsValid(t *testing.T) {
	req := require.New(t)
	req.True(KindStatus.IsValid())
	req.True(KindMessage.IsValid())
	req.True(KindPrivateMessage.IsValid())
	req.False(Kind("shout").IsValid())
}
