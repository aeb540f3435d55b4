package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orchardcare/orchard-advisor/internal/domain/forecast"
)

// WeatherOutlook returns spray windows, irrigation advice and smart actions for a coordinate.
func (h *Handler) WeatherOutlook(c *gin.Context) {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "lat and lon are required", nil))
		return
	}
	var req forecast.OutlookRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.weather.Outlook(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "outlook_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
