package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

type roomService interface {
	Create(ctx context.Context) (*room.Room, *entity.Credential, error)
	Count() int
}

type CreateRoomResponse struct {
	RoomID    string `json:"roomId"`
	JoinToken string `json:"joinToken"`
	WsURL     string `json:"wsUrl"`
}

type RoomHandler interface {
	CreateRoom(ctx echo.Context) error
}

type roomHandler struct {
	logger  *slog.Logger
	options Options
	rooms   roomService
}

func NewRoomHandler(logger *slog.Logger, options Options, rooms roomService) RoomHandler {
	return &roomHandler{
		logger:  logger,
		options: options,
		rooms:   rooms,
	}
}

// CreateRoom - allocates a room and returns its join credential with the websocket URL
// as reachable by the caller.
func (that *roomHandler) CreateRoom(ctx echo.Context) error {
	log := that.logger.With("method", "CreateRoom")

	rm, credential, err := that.rooms.Create(ctx.Request().Context())
	if err != nil {
		log.Error("failed to create room", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create room")
	}

	req := ctx.Request()
	host := pkg.RequestHost(req, that.options.Host+":"+that.options.Port)

	return ctx.JSON(http.StatusOK, CreateRoomResponse{
		RoomID:    rm.ID(),
		JoinToken: credential.Token,
		WsURL:     pkg.WebsocketScheme(req) + "://" + host + that.options.WebsocketPath,
	})
}
