package workers

import (
	"chat-room/domain"
	"chat-room/mocks"
	"chat-room/repositories"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	staleThreshold = 10 * time.Second
	reaperInterval = 15 * time.Second
)

type fixedClock struct{ at time.Time }

func (c *fixedClock) now() time.Time { return c.at }

func openRepositories(t *testing.T) (repositories.ParticipantRepository, repositories.MessageRepository) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repositories.NewParticipantRepository(db), repositories.NewMessageRepository(db, slog.Default())
}

func TestReaper_EvictsStaleParticipant(t *testing.T) {
	req := require.New(t)
	participants, messages := openRepositories(t)
	clock := &fixedClock{at: time.Now().UTC()}
	req.NoError(participants.Create(domain.Participant{Name: "Alice", LastStatus: clock.at.Add(-11 * time.Second)}))
	req.NoError(participants.Create(domain.Participant{Name: "Bob", LastStatus: clock.at.Add(-2 * time.Second)}))

	reaper := NewReaperWorker(slog.Default(), participants, messages, reaperInterval, staleThreshold, clock.now)
	req.Equal([]string{"Alice"}, reaper.Sweep())

	remaining, err := participants.List()
	req.NoError(err)
	req.Len(remaining, 1)
	req.Equal("Bob", remaining[0].Name)

	log, err := messages.GetMessages(nil, 0)
	req.NoError(err)
	req.Len(log, 1)
	req.Equal("Alice", log[0].From)
	req.Equal(domain.BroadcastTarget, log[0].To)
	req.Equal(domain.LeaveText, log[0].Text)
	req.Equal(domain.KindStatus, log[0].Kind)

	// A second cycle has nothing left to do
	req.Empty(reaper.Sweep())
	log, err = messages.GetMessages(nil, 0)
	req.NoError(err)
	req.Len(log, 1)
}

func TestReaper_HeartbeatPreventsEviction(t *testing.T) {
	req := require.New(t)
	participants, messages := openRepositories(t)
	clock := &fixedClock{at: time.Now().UTC()}
	req.NoError(participants.Create(domain.Participant{Name: "Alice", LastStatus: clock.at.Add(-time.Minute)}))

	req.NoError(participants.Touch("Alice", clock.at))

	reaper := NewReaperWorker(slog.Default(), participants, messages, reaperInterval, staleThreshold, clock.now)
	req.Empty(reaper.Sweep())

	remaining, err := participants.List()
	req.NoError(err)
	req.Len(remaining, 1)
}

func TestReaper_ThresholdIsExclusive(t *testing.T) {
	req := require.New(t)
	participants, messages := openRepositories(t)
	clock := &fixedClock{at: time.Now().UTC()}
	req.NoError(participants.Create(domain.Participant{Name: "Alice", LastStatus: clock.at.Add(-staleThreshold)}))

	reaper := NewReaperWorker(slog.Default(), participants, messages, reaperInterval, staleThreshold, clock.now)
	req.Empty(reaper.Sweep())
}

func TestReaper_DeparturesOrderedByName(t *testing.T) {
	req := require.New(t)
	participants, messages := openRepositories(t)
	clock := &fixedClock{at: time.Now().UTC()}
	for _, name := range []string{"Zoe", "Alice", "Mia"} {
		req.NoError(participants.Create(domain.Participant{Name: name, LastStatus: clock.at.Add(-time.Hour)}))
	}

	reaper := NewReaperWorker(slog.Default(), participants, messages, reaperInterval, staleThreshold, clock.now)
	req.Equal([]string{"Alice", "Mia", "Zoe"}, reaper.Sweep())

	log, err := messages.GetMessages(nil, 0)
	req.NoError(err)
	req.Len(log, 3)
	for i, name := range []string{"Alice", "Mia", "Zoe"} {
		req.Equal(name, log[i].From)
	}
}

func TestReaper_StoreErrorsAreSwallowed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participantRepository := mocks.NewMockIParticipantRepository(ctrl)
	messageRepository := mocks.NewMockIMessageRepository(ctrl)
	clock := &fixedClock{at: time.Now().UTC()}
	reaper := NewReaperWorker(slog.Default(), participantRepository, messageRepository, reaperInterval, staleThreshold, clock.now)

	// Given the store is unreachable, nothing is deleted nor written
	participantRepository.EXPECT().List().Return(nil, fmt.Errorf("connection refused")).Times(1)
	messageRepository.EXPECT().StoreMessages(gomock.Any()).Times(0)
	req.Empty(reaper.Sweep())

	// Given the batch delete fails, no departure is announced
	participantRepository.EXPECT().List().Return([]domain.Participant{
		{Name: "Alice", LastStatus: clock.at.Add(-time.Hour)},
	}, nil).Times(1)
	participantRepository.EXPECT().DeleteMany([]string{"Alice"}).Return(fmt.Errorf("disk full")).Times(1)
	req.Empty(reaper.Sweep())

	// The next cycle proceeds independently
	participantRepository.EXPECT().List().Return([]domain.Participant{
		{Name: "Alice", LastStatus: clock.at.Add(-time.Hour)},
	}, nil).Times(1)
	participantRepository.EXPECT().DeleteMany([]string{"Alice"}).Return(nil).Times(1)
	messageRepository.EXPECT().StoreMessages(gomock.Len(1)).Return(nil).Times(1)
	req.Equal([]string{"Alice"}, reaper.Sweep())
}

func TestReaper_SkipsWhenBusy(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	participantRepository := mocks.NewMockIParticipantRepository(ctrl)
	messageRepository := mocks.NewMockIMessageRepository(ctrl)
	reaper := NewReaperWorker(slog.Default(), participantRepository, messageRepository,
		reaperInterval, staleThreshold, time.Now)

	// Given a cycle is in progress
	reaper.busy.Lock()
	participantRepository.EXPECT().List().Times(0)
	req.Nil(reaper.Sweep())
	reaper.busy.Unlock()
}

func TestReaper_RunStopsWithContext(t *testing.T) {
	req := require.New(t)
	participants, messages := openRepositories(t)
	clock := &fixedClock{at: time.Now().UTC()}
	req.NoError(participants.Create(domain.Participant{Name: "Alice", LastStatus: clock.at.Add(-time.Hour)}))

	reaper := NewReaperWorker(slog.Default(), participants, messages, 20*time.Millisecond, staleThreshold, clock.now)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := reaper.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)

	remaining, err := participants.List()
	req.NoError(err)
	req.Empty(remaining)
}
