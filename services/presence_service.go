package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/repositories"
	"log/slog"
	"time"
)

type IPresenceService interface {
	Join(name string) error
	List() ([]domain.Participant, error)
	Heartbeat(name string) error
	Leave(name string) error
}

// PresenceService keeps track of who is in the room.
type PresenceService struct {
	log                   *slog.Logger
	participantRepository repositories.IParticipantRepository
	messageRepository     repositories.IMessageRepository
	now                   func() time.Time
}

func NewPresenceService(
	log *slog.Logger,
	participantRepository repositories.IParticipantRepository,
	messageRepository repositories.IMessageRepository,
	now func() time.Time,
) *PresenceService {
	return &PresenceService{
		log:                   log,
		participantRepository: participantRepository,
		messageRepository:     messageRepository,
		now:                   now,
	}
}

// Join registers name and announces it to the room.
// Returns ErrConflict when the name is already taken.
func (s *PresenceService) Join(name string) error {
	if err := validateCommand(domain.JoinCommand{Name: name}); err != nil {
		return err
	}
	at := s.now()
	if err := s.participantRepository.Create(domain.Participant{Name: name, LastStatus: at}); err != nil {
		return errors.Store(err)
	}
	if err := s.messageRepository.StoreMessage(domain.NewStatus(name, domain.JoinText, at)); err != nil {
		return errors.Store(err)
	}
	s.log.Debug("Participant joined", "name", name)
	return nil
}

func (s *PresenceService) List() ([]domain.Participant, error) {
	participants, err := s.participantRepository.List()
	if err != nil {
		return nil, errors.Store(err)
	}
	return participants, nil
}

// Heartbeat refreshes the liveness of name.
func (s *PresenceService) Heartbeat(name string) error {
	return errors.Store(s.participantRepository.Touch(name, s.now()))
}

// Leave removes name immediately instead of waiting for the reaper.
func (s *PresenceService) Leave(name string) error {
	if err := s.participantRepository.Delete(name); err != nil {
		return errors.Store(err)
	}
	if err := s.messageRepository.StoreMessage(domain.NewStatus(name, domain.LeaveText, s.now())); err != nil {
		return errors.Store(err)
	}
	s.log.Debug("Participant left", "name", name)
	return nil
}
