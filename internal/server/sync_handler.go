package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type SyncHandler struct {
	trigger SyncTrigger
}

func NewSyncHandler(trigger SyncTrigger) *SyncHandler {
	return &SyncHandler{trigger: trigger}
}

// Trigger schedules a sync run without waiting for it.
func (h *SyncHandler) Trigger(c echo.Context) error {
	if h.trigger == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "scheduler not running",
		})
	}

	h.trigger.Trigger()
	log.Info().Str("remote_addr", c.Request().RemoteAddr).Msg("sync run requested")

	return c.JSON(http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}
