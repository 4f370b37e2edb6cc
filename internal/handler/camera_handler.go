package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/medirank/service-hospital/internal/application"
	"github.com/medirank/service-hospital/internal/response"
)

// CameraHandler handles HTTP requests for camera frame pushes and wait
// estimate reads.
type CameraHandler struct {
	service *application.CameraService
}

// NewCameraHandler creates a new CameraHandler.
func NewCameraHandler(service *application.CameraService) *CameraHandler {
	return &CameraHandler{service: service}
}

// RegisterRoutes registers the camera-frame routes.
func (h *CameraHandler) RegisterRoutes(r *gin.RouterGroup) {
	frames := r.Group("/camera-frame")
	{
		frames.POST("", h.PushFrames)
		frames.GET("/:hospital_id", h.LatestEstimate)
	}
}

// PushFrames handles POST /camera-frame.
func (h *CameraHandler) PushFrames(c *gin.Context) {
	var req application.PushFramesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.PushFrames(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// LatestEstimate handles GET /camera-frame/:hospital_id.
func (h *CameraHandler) LatestEstimate(c *gin.Context) {
	result, err := h.service.LatestEstimate(c.Request.Context(), c.Param("hospital_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
