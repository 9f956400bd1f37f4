package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/bnc4vk/pap-data-population/internal/access"
	"github.com/bnc4vk/pap-data-population/internal/catalog"
	"github.com/bnc4vk/pap-data-population/internal/store"
	"github.com/bnc4vk/pap-data-population/internal/syncer"
)

// QueryHandler serves the ad-hoc single-substance path: one oracle query
// for one substance, upserted into the store in a single batched write.
// It is the degenerate one-batch case of a sync run.
type QueryHandler struct {
	oracle     syncer.Oracle
	store      store.Store
	source     *catalog.Source
	normalizer *access.Normalizer
}

func NewQueryHandler(o syncer.Oracle, st store.Store, source *catalog.Source) *QueryHandler {
	return &QueryHandler{
		oracle:     o,
		store:      st,
		source:     source,
		normalizer: access.NewNormalizer(),
	}
}

type queryRequest struct {
	Substance string   `json:"substance"`
	Countries []string `json:"countries,omitempty"`
}

func (h *QueryHandler) Query(c echo.Context) error {
	ctx := c.Request().Context()

	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Substance == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "substance is required",
		})
	}

	cat := h.source.Snapshot()
	countries := req.Countries
	if len(countries) == 0 {
		countries = cat.Countries
	} else if unknown := unknownCountries(countries, cat.Countries); len(unknown) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "unknown country codes",
			"unknown": unknown,
		})
	}

	raw, err := h.oracle.Query(ctx, []string{req.Substance}, countries)
	if err != nil {
		log.Error().Err(err).Str("substance", req.Substance).Msg("oracle query failed")
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "oracle query failed",
		})
	}

	records := h.normalizer.Normalize(raw)

	if err := h.store.Upsert(ctx, records); err != nil {
		log.Error().Err(err).Str("substance", req.Substance).Msg("failed to store records")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store records",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":   len(records),
		"records": records,
	})
}

func unknownCountries(requested, known []string) []string {
	set := make(map[string]bool, len(known))
	for _, code := range known {
		set[code] = true
	}

	var unknown []string
	for _, code := range requested {
		if !set[code] {
			unknown = append(unknown, code)
		}
	}
	return unknown
}
