package rest

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

type fakeRooms struct{}

func (fakeRooms) Create(context.Context) (*room.Room, *entity.Credential, error) {
	return nil, nil, nil
}

func (fakeRooms) Count() int {
	return 0
}

func echoContext(rec *httptest.ResponseRecorder, req *http.Request) echo.Context {
	return echo.New().NewContext(req, rec)
}
