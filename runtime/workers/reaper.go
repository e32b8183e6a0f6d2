package workers

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
)

// ReaperWorker evicts participants whose last status is older than staleThreshold
// and announces each departure to the room.
type ReaperWorker struct {
	log                   *slog.Logger
	participantRepository repositories.IParticipantRepository
	messageRepository     repositories.IMessageRepository
	interval              time.Duration
	staleThreshold        time.Duration
	now                   func() time.Time
	busy                  sync.Mutex
}

func NewReaperWorker(
	log *slog.Logger,
	participantRepository repositories.IParticipantRepository,
	messageRepository repositories.IMessageRepository,
	interval, staleThreshold time.Duration,
	now func() time.Time,
) *ReaperWorker {
	return &ReaperWorker{
		log:                   log,
		participantRepository: participantRepository,
		messageRepository:     messageRepository,
		interval:              interval,
		staleThreshold:        staleThreshold,
		now:                   now,
	}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting reaper", "interval", w.interval, "stale_threshold", w.staleThreshold)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one eviction cycle and returns the evicted names.
// A cycle requested while another one is running is skipped.
// Store errors end the cycle and are only logged.
func (w *ReaperWorker) Sweep() []string {
	if !w.busy.TryLock() {
		w.log.Debug("Previous reaper cycle still running, skipping")
		return nil
	}
	defer w.busy.Unlock()

	participants, err := w.participantRepository.List()
	if err != nil {
		w.log.Error("Failed to list participants", "err", err)
		return nil
	}
	now := w.now()
	stale := domain.StaleParticipants(participants, now, w.staleThreshold)
	if len(stale) == 0 {
		return nil
	}

	if err = w.participantRepository.DeleteMany(stale); err != nil {
		w.log.Error("Failed to evict participants", "names", stale, "err", err)
		return nil
	}
	departures := lo.Map(stale, func(name string, _ int) domain.Message {
		return domain.NewStatus(name, domain.LeaveText, now)
	})
	if err = w.messageRepository.StoreMessages(departures); err != nil {
		w.log.Error("Failed to store departure notices", "names", stale, "err", err)
		return stale
	}
	w.log.Info("Evicted inactive participants", "count", len(stale), "names", stale)
	return stale
}
