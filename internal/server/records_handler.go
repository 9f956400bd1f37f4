package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/bnc4vk/pap-data-population/internal/store"
)

type RecordsHandler struct {
	store store.Store
}

func NewRecordsHandler(st store.Store) *RecordsHandler {
	return &RecordsHandler{store: st}
}

// List returns persisted rows, optionally filtered by ?substance=.
func (h *RecordsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	substance := c.QueryParam("substance")

	rows, err := h.store.List(ctx, substance)
	if err != nil {
		log.Error().Err(err).Str("substance", substance).Msg("failed to list records")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list records",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":   len(rows),
		"records": rows,
	})
}
