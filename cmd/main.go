package main

import (
	"chat-room/contract"
	"chat-room/infrastructure/http/server"
	"chat-room/internal"
	"chat-room/moderation"
	"chat-room/repositories"
	"chat-room/runtime/workers"
	"chat-room/services"
	"chat-room/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes reported to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat room terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Returning instead of exiting lets the deferred Badger close run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	moderator, err := buildModerator(config)
	if err != nil {
		return exitConfig, err
	}

	// 2. Database (BadgerDB), one handle for the whole process
	db, err := storage.Open(config.BadgerFilepath, log, false)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	participantRepository := repositories.NewParticipantRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)
	presenceService := services.NewPresenceService(log, participantRepository, messageRepository, time.Now)
	messageService := services.NewMessageService(log, participantRepository, messageRepository, moderator, time.Now)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReaperWorker(log, participantRepository, messageRepository,
		config.ReaperInterval, config.StaleThreshold, time.Now))
	if config.MetricInterval > 0 {
		sup.Add(workers.NewProcessStatsWorker(log, config.MetricInterval))
	}
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	if config.DebugPort > 0 {
		inspector := internal.StartDebugServer(log, db, config.DebugPort, stats(config))
		defer func() { _ = inspector.Close() }()
	}

	// 5. HTTP server
	chatServer := server.NewChatServer(log, presenceService, messageService)
	httpServer := server.CreateServer(config.Address(), server.NewRouter(log, chatServer))
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", config.Address(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup, workers stop before the database closes
	_ = server.ShutdownServer(log, httpServer, config.ShutdownTimeout)
	stopWorkers(log, sup, supervisorDone)
	log.Info("Program stopped cleanly")
	return code, err
}

func buildModerator(config internal.Config) (*moderation.Moderator, error) {
	words := config.Words()
	if len(words) == 0 {
		return nil, nil
	}
	replacement, err := config.CharacterRune()
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(words, replacement)
}

func stopWorkers(log *slog.Logger, sup contract.ISupervisor, done <-chan struct{}) {
	sup.Stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Warn("Workers did not stop in time")
	}
}

func stats(config internal.Config) internal.StatsProvider {
	startedAt := time.Now().UTC()
	return func() map[string]any {
		return map[string]any{
			"Started":         startedAt.Format(time.RFC822),
			"Uptime":          time.Since(startedAt).Round(time.Second).String(),
			"Reaper interval": config.ReaperInterval.String(),
			"Stale threshold": config.StaleThreshold.String(),
		}
	}
}
