package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orchardcare/orchard-advisor/internal/domain/agronomy"
	"github.com/orchardcare/orchard-advisor/internal/domain/consultation"
	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	advisory      agronomy.Service
	weather       forecast.Service
	consultations *consultation.Manager
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(advisory agronomy.Service, weather forecast.Service, consultations *consultation.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		advisory:      advisory,
		weather:       weather,
		consultations: consultations,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseFamily reads ?family= and defaults to soil.
func parseFamily(c *gin.Context, raw string) (agronomy.Family, bool) {
	family := agronomy.Family(strings.ToLower(strings.TrimSpace(raw)))
	if family == "" {
		return agronomy.FamilySoil, true
	}
	if !family.IsLab() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "family must be soil or water", nil))
		return "", false
	}
	return family, true
}
