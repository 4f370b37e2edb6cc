package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/medirank/service-hospital/internal/application"
	"github.com/medirank/service-hospital/internal/response"
)

// NearbyHandler handles HTTP requests for the nearby-hospitals ranking.
type NearbyHandler struct {
	service *application.RankingService
}

// NewNearbyHandler creates a new NearbyHandler.
func NewNearbyHandler(service *application.RankingService) *NearbyHandler {
	return &NearbyHandler{service: service}
}

// RegisterRoutes registers the nearby-hospitals routes.
func (h *NearbyHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/nearby-hospitals", h.NearbyHospitals)
}

// NearbyHospitals handles POST /nearby-hospitals.
func (h *NearbyHandler) NearbyHospitals(c *gin.Context) {
	var req application.NearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RankNearby(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
