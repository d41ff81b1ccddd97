package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geocoding-microservice/internal/pkg/utils"
	"github.com/geocoding-microservice/internal/usecase"
	"github.com/geocoding-microservice/internal/usecase/dto"
)

// StatsHandler serves the lookup counters.
type StatsHandler struct {
	geocodeUC *usecase.GeocodeUseCase
	logger    *zap.Logger
}

func NewStatsHandler(geocodeUC *usecase.GeocodeUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		geocodeUC: geocodeUC,
		logger:    logger,
	}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *fiber.Ctx) error {
	return utils.SendSuccess(c, dto.StatsResponse{Stats: h.geocodeUC.Stats()}, nil)
}
