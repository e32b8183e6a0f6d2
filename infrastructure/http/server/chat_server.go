package server

import (
	"chat-room/domain"
	"chat-room/errors"
	"chat-room/services"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// UserHeader carries the name of the current participant.
// It is trusted as-is, there is no authentication.
const UserHeader = "user"

type ChatServer struct {
	log             *slog.Logger
	presenceService services.IPresenceService
	messageService  services.IMessageService
}

func NewChatServer(log *slog.Logger, presenceService services.IPresenceService,
	messageService services.IMessageService) *ChatServer {
	return &ChatServer{log: log, presenceService: presenceService, messageService: messageService}
}

type JoinRequest struct {
	Name string `json:"name"`
}

type MessageRequest struct {
	To   string      `json:"to"`
	Text string      `json:"text"`
	Type domain.Kind `json:"type"`
}

func (s *ChatServer) Join(w http.ResponseWriter, r *http.Request) {
	var body JoinRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.presenceService.Join(body.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *ChatServer) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := s.presenceService.List()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusOK, nonNil(participants))
}

func (s *ChatServer) Leave(w http.ResponseWriter, r *http.Request) {
	if err := s.presenceService.Leave(r.Header.Get(UserHeader)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := s.presenceService.Heartbeat(r.Header.Get(UserHeader)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *ChatServer) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	message, err := s.messageService.PostMessage(toCommand(r.Header.Get(UserHeader), body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusCreated, message)
}

// GetMessages answers 409 for an unknown user, unlike the other endpoints.
func (s *ChatServer) GetMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.fail(w, r, fmt.Errorf("%w: limit must be a non-negative integer, got %q", errors.ErrValidation, raw))
			return
		}
		limit = parsed
	}
	messages, err := s.messageService.GetMessages(domain.GetMessagesCommand{
		Requester: r.Header.Get(UserHeader),
		Limit:     limit,
	})
	if stderrors.Is(err, errors.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, http.StatusOK, nonNil(messages))
}

func (s *ChatServer) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err = s.messageService.DeleteMessage(r.Header.Get(UserHeader), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *ChatServer) EditMessage(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body MessageRequest
	if err = decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	requester := r.Header.Get(UserHeader)
	if err = s.messageService.EditMessage(requester, id, toCommand(requester, body)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "ok")
}

func toCommand(from string, body MessageRequest) domain.PostMessageCommand {
	return domain.PostMessageCommand{From: from, To: body.To, Text: body.Text, Kind: body.Type}
}

// messageID parses the path id. A malformed id cannot name a stored message.
func messageID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("message %q: %w", raw, errors.ErrNotFound)
	}
	return id, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %v", errors.ErrValidation, err)
	}
	return nil
}

func (s *ChatServer) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write response", "error", err)
	}
}

func (s *ChatServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), status)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
