package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaleParticipants(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	threshold := 10 * time.Second
	participants := []Participant{
		{Name: "Zoe", LastStatus: now.Add(-time.Minute)},
		{Name: "Bob", LastStatus: now.Add(-threshold)},
		{Name: "Alice", LastStatus: now.Add(-threshold - time.Millisecond)},
		{Name: "Clara", LastStatus: now},
	}

	req.Equal([]string{"Alice", "Zoe"}, StaleParticipants(participants, now, threshold))
	req.Empty(StaleParticipants(nil, now, threshold))
}
