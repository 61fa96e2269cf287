package handlers

import (
	"github.com/agencykit/contractd/internal/config"
	"github.com/agencykit/contractd/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles the service health route
type HealthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// GetHealth handles GET /api/health
// @Summary Service health
// @Description Check database and authorizer connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB)

	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(result)
}
