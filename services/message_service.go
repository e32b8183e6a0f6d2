package services

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/moderation"
	"chat-room/repositories"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type IMessageService interface {
	PostMessage(cmd domain.PostMessageCommand) (domain.Message, error)
	GetMessages(cmd domain.GetMessagesCommand) ([]domain.Message, error)
	DeleteMessage(requester string, id uuid.UUID) error
	EditMessage(requester string, id uuid.UUID, cmd domain.PostMessageCommand) error
}

type MessageService struct {
	log                   *slog.Logger
	participantRepository repositories.IParticipantRepository
	messageRepository     repositories.IMessageRepository
	moderator             *moderation.Moderator
	now                   func() time.Time
}

// NewMessageService builds the message log. moderator may be nil, text is then stored as sent.
func NewMessageService(
	log *slog.Logger,
	participantRepository repositories.IParticipantRepository,
	messageRepository repositories.IMessageRepository,
	moderator *moderation.Moderator,
	now func() time.Time,
) *MessageService {
	return &MessageService{
		log:                   log,
		participantRepository: participantRepository,
		messageRepository:     messageRepository,
		moderator:             moderator,
		now:                   now,
	}
}

// PostMessage appends a public or private message.
// The sender must be a registered participant, otherwise ErrUnauthenticated.
func (s *MessageService) PostMessage(cmd domain.PostMessageCommand) (domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}
	if err := s.requireParticipant(cmd.From); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, fmt.Errorf("%w: %q", errors.ErrUnauthenticated, cmd.From)
		}
		return domain.Message{}, err
	}
	message := domain.NewMessage(cmd.From, cmd.To, s.censor(cmd.Text), cmd.Kind, s.now())
	if err := s.messageRepository.StoreMessage(message); err != nil {
		return domain.Message{}, errors.Store(err)
	}
	return message, nil
}

// GetMessages returns what the requester is allowed to read, oldest first,
// keeping only the Limit most recent when Limit > 0.
func (s *MessageService) GetMessages(cmd domain.GetMessagesCommand) ([]domain.Message, error) {
	if err := s.requireParticipant(cmd.Requester); err != nil {
		return nil, err
	}
	messages, err := s.messageRepository.GetMessages(func(m domain.Message) bool {
		return m.VisibleTo(cmd.Requester)
	}, cmd.Limit)
	if err != nil {
		return nil, errors.Store(err)
	}
	return messages, nil
}

// DeleteMessage removes a message owned by requester.
func (s *MessageService) DeleteMessage(requester string, id uuid.UUID) error {
	if _, err := s.ownedMessage(requester, id); err != nil {
		return err
	}
	return errors.Store(s.messageRepository.DeleteMessage(id))
}

// EditMessage replaces the text of a message owned by requester.
// Recipient, kind and time are left untouched.
func (s *MessageService) EditMessage(requester string, id uuid.UUID, cmd domain.PostMessageCommand) error {
	if err := s.requireParticipant(requester); err != nil {
		return err
	}
	if _, err := s.ownedMessage(requester, id); err != nil {
		return err
	}
	cmd.From = requester
	if err := validateCommand(cmd); err != nil {
		return err
	}
	return errors.Store(s.messageRepository.UpdateText(id, s.censor(cmd.Text)))
}

func (s *MessageService) ownedMessage(requester string, id uuid.UUID) (domain.Message, error) {
	message, err := s.messageRepository.GetMessage(id)
	if err != nil {
		return domain.Message{}, errors.Store(err)
	}
	if message.From != requester {
		s.log.Debug("Rejected change on foreign message", "requester", requester, "id", id)
		return domain.Message{}, errors.ErrForbidden
	}
	return message, nil
}

func (s *MessageService) requireParticipant(name string) error {
	_, err := s.participantRepository.Get(name)
	return errors.Store(err)
}

func (s *MessageService) censor(text string) string {
	if s.moderator == nil {
		return text
	}
	return s.moderator.Censor(text)
}
