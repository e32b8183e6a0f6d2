package e2e

import (
	"bytes"
	"chat-room/infrastructure/http/server"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config  Config
	client  *http.Client
	local   *httptest.Server
	db      *badger.DB
	dataDir string
	stop    context.CancelFunc
	done    chan struct{}
}

// SetupSuite loads the environment configuration and, without E2E_BASE_URL,
// boots the whole stack in-process on a temporary Badger directory.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.client = &http.Client{Timeout: 5 * time.Second}
	if s.Config.BaseURL != "" {
		return
	}

	s.dataDir, err = os.MkdirTemp("", "chat-room-e2e-*")
	s.Require().NoError(err)
	s.db, err = badger.Open(badger.DefaultOptions(s.dataDir).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	log := slog.Default()
	participants := repositories.NewParticipantRepository(s.db)
	messages := repositories.NewMessageRepository(s.db, log)
	chat := server.NewChatServer(log,
		services.NewPresenceService(log, participants, messages, time.Now),
		services.NewMessageService(log, participants, messages, nil, time.Now))

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	s.done = make(chan struct{})
	supervisor := workers.NewSupervisor(log, 50*time.Millisecond).
		Add(workers.NewReaperWorker(log, participants, messages,
			s.Config.ReaperInterval, s.Config.StaleThreshold, time.Now))
	go func() {
		defer close(s.done)
		supervisor.Run(ctx)
	}()

	s.local = httptest.NewServer(server.NewRouter(log, chat))
	s.Config.BaseURL = s.local.URL
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if s.local == nil {
		return
	}
	s.local.Close()
	s.stop()
	<-s.done
	_ = s.db.Close()
	_ = os.RemoveAll(s.dataDir)
}

// Step prints a header for a scenario step.
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Do sends a JSON request as user (when not empty), decodes a JSON reply into
// out (when not nil) and returns the status code.
func (s *BaseHTTPSuite) Do(method, path, user string, body, out any) int {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		payload = bytes.NewReader(raw)
	}
	request, err := http.NewRequest(method, s.Config.BaseURL+path, payload)
	s.Require().NoError(err)
	if user != "" {
		request.Header.Set(server.UserHeader, user)
	}

	start := time.Now()
	response, err := s.client.Do(request)
	s.Require().NoError(err, "Failed to reach "+s.Config.BaseURL)
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	s.Require().NoError(err)

	line := fmt.Sprintf("HTTP %s %s [%d] in %v", method, path, response.StatusCode, time.Since(start))
	if s.Config.DebugJSON && len(raw) > 0 {
		line += "\n" + string(raw)
	}
	s.T().Log(line)

	if out != nil && response.StatusCode < http.StatusBadRequest {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return response.StatusCode
}
