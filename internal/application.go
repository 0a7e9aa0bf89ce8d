package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/config"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
	"github.com/rocketscienceinc/gomoku-backend/transport/rest"
	"github.com/rocketscienceinc/gomoku-backend/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var (
	ErrAddrNotFound   = errors.New("redis address string is empty")
	ErrUnknownStorage = errors.New("unknown credential storage")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	rules, err := gomoku.Rules{
		Variant:   conf.Rules.Variant,
		BoardSize: conf.Rules.BoardSize,
		WinLength: conf.Rules.WinLength,
	}.Validate()
	if err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	credentials, closeStorage, err := newCredentialRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStorage()

	tokens := service.NewTokenService(conf.TokenTTL(), nil)
	limiter := service.NewRateLimiter(conf.RateLimit.Limit, conf.RateLimit.Window, nil)
	registry := room.NewRegistry(logger, tokens, credentials, rules)

	wsServer := websocket.New(logger, registry, limiter, websocket.Options{
		Development:    conf.IsDevelopment(),
		AllowedOrigins: conf.AllowedOrigins,
		PingInterval:   conf.Heartbeat.PingInterval,
		PongTimeout:    conf.Heartbeat.PongTimeout,
	})

	httpServer := rest.New(logger, rest.Options{
		Host:            conf.Host,
		Port:            conf.Port,
		BasePath:        conf.BasePath,
		WebsocketPath:   conf.WebsocketPath(),
		LogLevel:        conf.LogLevel,
		TokenTTLMinutes: conf.TokenTTLMinutes,
		AllowedOrigins:  conf.AllowedOrigins,
	}, registry, wsServer)

	go runSweeper(ctx, logger, registry, conf.SweepInterval)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		addr := conf.Host + ":" + conf.Port
		log.Info("Starting HTTP server", "addr", addr, "websocketPath", conf.WebsocketPath(), "rules", rules)
		if httpErr := httpServer.Start(addr); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	wsServer.Shutdown()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	return nil
}

// newCredentialRepository - memory by default, redis when configured.
func newCredentialRepository(
	ctx context.Context,
	log *slog.Logger,
	conf *config.Config,
) (repository.CredentialRepository, func(), error) {
	switch conf.Storage {
	case "", config.StorageMemory:
		return repository.NewMemoryCredentialRepository(), func() {}, nil

	case config.StorageRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisAddrString := conf.Redis.GetRedisAddr()

		redisStorage, err := storage.NewRedisClient(ctx, redisAddrString)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeStorage := func() {
			if closeErr := redisStorage.Close(); closeErr != nil {
				log.Error("could not close redis storage", "error", closeErr)
			}
		}

		return repository.NewCredentialRepository(redisStorage), closeStorage, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownStorage, conf.Storage)
	}
}

// runSweeper - periodically drops rooms that were never joined and can no longer be.
func runSweeper(ctx context.Context, logger *slog.Logger, registry *room.Registry, interval time.Duration) {
	log := logger.With("component", "sweeper")

	if interval <= 0 {
		log.Info("room sweeper disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := registry.Sweep(ctx); err != nil {
				log.Error("sweep failed", "error", err)
			}
		}
	}
}
