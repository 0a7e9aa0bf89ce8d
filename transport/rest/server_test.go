package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

func newTestServer(t *testing.T, options Options) (http.Handler, *room.Registry) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := room.NewRegistry(logger, service.NewTokenService(0, nil),
		repository.NewMemoryCredentialRepository(), gomoku.DefaultRules)

	// stands in for the websocket endpoint
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	return New(logger, options, registry, ws).Handler(), registry
}

func defaultOptions() Options {
	return Options{
		Host:            "0.0.0.0",
		Port:            "3000",
		BasePath:        "/",
		WebsocketPath:   "/ws",
		LogLevel:        "info",
		TokenTTLMinutes: 10,
	}
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRoomHandler_CreateRoom(t *testing.T) {
	t.Run("Direct request", func(t *testing.T) {
		handler, registry := newTestServer(t, defaultOptions())

		// When: creating a room
		rec := serve(handler, httptest.NewRequest(http.MethodPost, "http://game.local:3000/api/rooms", nil))

		// Then: the credential and the websocket URL come back
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CreateRoomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Regexp(t, `^[A-Z0-9]{8}$`, resp.RoomID)
		assert.Regexp(t, `^[0-9a-f]{64}$`, resp.JoinToken)
		assert.Equal(t, "ws://game.local:3000/ws", resp.WsURL)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Behind a TLS proxy with a base path", func(t *testing.T) {
		options := defaultOptions()
		options.BasePath = "/gomoku"
		options.WebsocketPath = "/gomoku/ws"
		handler, _ := newTestServer(t, options)

		req := httptest.NewRequest(http.MethodPost, "/api/rooms", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		req.Header.Set("X-Forwarded-Host", "play.example.com")

		rec := serve(handler, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp CreateRoomResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "wss://play.example.com/gomoku/ws", resp.WsURL)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		handler, _ := newTestServer(t, defaultOptions())

		rec := serve(handler, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("Diag", func(t *testing.T) {
		options := defaultOptions()
		options.AllowedOrigins = []string{"https://friends.example"}
		handler, _ := newTestServer(t, options)

		serve(handler, httptest.NewRequest(http.MethodPost, "/api/rooms", nil))

		rec := serve(handler, httptest.NewRequest(http.MethodGet, "/diag", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp DiagResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 3000, resp.Port)
		assert.Equal(t, "0.0.0.0", resp.Host)
		assert.Equal(t, "/ws", resp.WebsocketPath)
		assert.Equal(t, "/", resp.BasePath)
		assert.Equal(t, 10, resp.TokenTTLMinutes)
		assert.Equal(t, "info", resp.LogLevel)
		assert.Equal(t, 1, resp.RoomsOnline)
		assert.Equal(t, []string{"https://friends.example"}, resp.AllowedOrigins)
		assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(0))

		now, err := time.Parse(time.RFC3339Nano, resp.Now)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), now, time.Minute)
	})

	t.Run("Uptime follows the clock", func(t *testing.T) {
		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		current := start
		health := NewHealthHandler(defaultOptions(), fakeRooms{}, func() time.Time { return current })

		current = start.Add(90 * time.Second)

		rec := httptest.NewRecorder()
		e := echoContext(rec, httptest.NewRequest(http.MethodGet, "/diag", nil))
		require.NoError(t, health.Diag(e))

		var resp DiagResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(90), resp.UptimeSeconds)
		assert.Empty(t, resp.AllowedOrigins)
		assert.NotNil(t, resp.AllowedOrigins)
	})
}

func TestServer_Routes(t *testing.T) {
	t.Run("Websocket is mounted under the base path and at /ws", func(t *testing.T) {
		options := defaultOptions()
		options.BasePath = "/gomoku"
		options.WebsocketPath = "/gomoku/ws"
		handler, _ := newTestServer(t, options)

		for _, path := range []string{"/gomoku/ws", "/ws"} {
			rec := serve(handler, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusTeapot, rec.Code, path)
		}
	})

	t.Run("Unknown API route is a JSON 404", func(t *testing.T) {
		handler, _ := newTestServer(t, defaultOptions())

		rec := serve(handler, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
	})
}
