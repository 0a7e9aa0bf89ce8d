package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type DiagResponse struct {
	Status          string   `json:"status"`
	Port            int      `json:"port"`
	Host            string   `json:"host"`
	WebsocketPath   string   `json:"websocketPath"`
	TokenTTLMinutes int      `json:"tokenTtlMinutes"`
	BasePath        string   `json:"basePath"`
	LogLevel        string   `json:"logLevel"`
	RoomsOnline     int      `json:"roomsOnline"`
	Now             string   `json:"now"`
	AllowedOrigins  []string `json:"allowedOrigins"`
	UptimeSeconds   int64    `json:"uptimeSeconds"`
}

type HealthHandler interface {
	Health(ctx echo.Context) error
	Diag(ctx echo.Context) error
}

type healthHandler struct {
	options   Options
	rooms     roomService
	now       func() time.Time
	startedAt time.Time
}

func NewHealthHandler(options Options, rooms roomService, now func() time.Time) HealthHandler {
	return &healthHandler{
		options:   options,
		rooms:     rooms,
		now:       now,
		startedAt: now(),
	}
}

func (that *healthHandler) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

func (that *healthHandler) Diag(ctx echo.Context) error {
	now := that.now()
	port, _ := strconv.Atoi(that.options.Port)

	allowed := that.options.AllowedOrigins
	if allowed == nil {
		allowed = []string{}
	}

	return ctx.JSON(http.StatusOK, DiagResponse{
		Status:          "ok",
		Port:            port,
		Host:            that.options.Host,
		WebsocketPath:   that.options.WebsocketPath,
		TokenTTLMinutes: that.options.TokenTTLMinutes,
		BasePath:        that.options.BasePath,
		LogLevel:        that.options.LogLevel,
		RoomsOnline:     that.rooms.Count(),
		Now:             now.UTC().Format(time.RFC3339Nano),
		AllowedOrigins:  allowed,
		UptimeSeconds:   int64(now.Sub(that.startedAt).Round(time.Second).Seconds()),
	})
}
