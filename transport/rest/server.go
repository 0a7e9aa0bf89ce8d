package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Options struct {
	Host            string
	Port            string
	BasePath        string
	WebsocketPath   string
	LogLevel        string
	TokenTTLMinutes int
	AllowedOrigins  []string
}

type Server struct {
	logger *slog.Logger
	echo   *echo.Echo
}

// New - HTTP surface: room creation, health, diagnostics and the websocket endpoint.
func New(logger *slog.Logger, options Options, rooms roomService, ws http.Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	roomHandler := NewRoomHandler(logger, options, rooms)
	healthHandler := NewHealthHandler(options, rooms, time.Now)

	e.POST("/api/rooms", roomHandler.CreateRoom)
	e.GET("/health", healthHandler.Health)
	e.GET("/diag", healthHandler.Diag)

	wsHandler := echo.WrapHandler(ws)
	e.GET(options.WebsocketPath, wsHandler)
	if options.WebsocketPath != "/ws" {
		e.GET("/ws", wsHandler)
	}

	return &Server{
		logger: logger,
		echo:   e,
	}
}

func (that *Server) Handler() http.Handler {
	return that.echo
}

// Start - blocks until the server stops. A graceful shutdown is not an error.
func (that *Server) Start(addr string) error {
	that.echo.Server.ReadHeaderTimeout = 10 * time.Second
	that.echo.Server.IdleTimeout = 30 * time.Second

	if err := that.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// errorHandler - every error response is {"error": "..."}.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			message = fmt.Sprint(httpErr.Message)
		} else {
			logger.Error("request failed", "uri", ctx.Request().RequestURI, "error", err)
		}

		if err = ctx.JSON(code, map[string]string{"error": message}); err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
