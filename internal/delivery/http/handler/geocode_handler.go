package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/pkg/errors"
	"github.com/geocoding-microservice/internal/pkg/utils"
	"github.com/geocoding-microservice/internal/pkg/validator"
	"github.com/geocoding-microservice/internal/usecase"
	"github.com/geocoding-microservice/internal/usecase/dto"
)

// GeocodeHandler exposes the geocoding operations over HTTP.
type GeocodeHandler struct {
	geocodeUC *usecase.GeocodeUseCase
	logger    *zap.Logger
}

func NewGeocodeHandler(geocodeUC *usecase.GeocodeUseCase, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// Geocode handles GET /api/v1/geocode?q=<address>&filter=<bool>
func (h *GeocodeHandler) Geocode(c *fiber.Ctx) error {
	req := dto.GeocodeRequest{
		Query:  c.Query("q"),
		Filter: c.QueryBool("filter", false),
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.Geocode(c.Context(), req.Query, req.Filter)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GeocodeResponse{Result: *result}, nil)
}

// ReverseGeocode handles POST /api/v1/reverse-geocode
func (h *GeocodeHandler) ReverseGeocode(c *fiber.Ctx) error {
	var req dto.ReverseGeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.geocodeUC.ReverseGeocode(c.Context(), *req.Lat, *req.Lon, req.Filter)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GeocodeResponse{Result: *result}, nil)
}

// BatchGeocode handles POST /api/v1/batch/geocode
func (h *GeocodeHandler) BatchGeocode(c *fiber.Ctx) error {
	var req dto.BatchGeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	results := h.geocodeUC.BatchGeocode(c.Context(), req.Addresses, req.Filter)

	resolved := 0
	for _, r := range results {
		if r != nil {
			resolved++
		}
	}

	return utils.SendSuccess(c, dto.BatchGeocodeResponse{
		Results:  results,
		Resolved: resolved,
	}, &utils.Meta{Total: len(results)})
}

// InvalidateCache handles DELETE /api/v1/cache, keyed by ?q=<address> or a
// {lat, lon} body.
func (h *GeocodeHandler) InvalidateCache(c *fiber.Ctx) error {
	var req dto.InvalidateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, errors.ErrInvalidRequest)
		}
	}
	if req.Address == "" {
		req.Address = c.Query("q")
	}

	switch {
	case req.Address != "":
		if err := h.geocodeUC.InvalidateAddress(c.Context(), req.Address); err != nil {
			return utils.SendError(c, err)
		}
	case req.Lat != nil && req.Lon != nil:
		if err := h.geocodeUC.InvalidateCoordinates(c.Context(), *req.Lat, *req.Lon); err != nil {
			return utils.SendError(c, err)
		}
	default:
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	return utils.SendSuccess(c, fiber.Map{"invalidated": true}, nil)
}
