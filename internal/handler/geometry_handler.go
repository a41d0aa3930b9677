package handler

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/rose-backend-go/internal/service"
	"github.com/jengzang/rose-backend-go/pkg/response"
)

// GeometryHandler handles HTTP requests for the plot geometry
type GeometryHandler struct {
	roseService *service.RoseService
}

// NewGeometryHandler creates a new geometry handler
func NewGeometryHandler(roseService *service.RoseService) *GeometryHandler {
	return &GeometryHandler{roseService: roseService}
}

// Get handles GET /api/v1/geometry
func (h *GeometryHandler) Get(c *gin.Context) {
	response.Success(c, h.roseService.Geometry())
}

// Update handles PUT /api/v1/geometry
func (h *GeometryHandler) Update(c *gin.Context) {
	// unset fields keep their current value
	cfg := h.roseService.Geometry()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	next, err := h.roseService.UpdateGeometry(c.Request.Context(), cfg)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, next)
}

// Rescale handles POST /api/v1/geometry/rescale
func (h *GeometryHandler) Rescale(c *gin.Context) {
	cfg, err := h.roseService.Rescale(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, cfg)
}

// Radius handles GET /api/v1/geometry/radius?count=|percent=
func (h *GeometryHandler) Radius(c *gin.Context) {
	var (
		count   *int
		percent *float64
	)
	if raw, ok := c.GetQuery("count"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "Invalid count parameter")
			return
		}
		count = &v
	}
	if raw, ok := c.GetQuery("percent"); ok {
		v, err := parseFinite(raw)
		if err != nil {
			response.BadRequest(c, "Invalid percent parameter")
			return
		}
		percent = &v
	}
	if count != nil && percent != nil {
		response.BadRequest(c, "Use either count or percent")
		return
	}

	r, err := h.roseService.Radius(count, percent)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, r)
}

// Spoke handles GET /api/v1/geometry/spoke?angle=
func (h *GeometryHandler) Spoke(c *gin.Context) {
	angle, err := parseFinite(c.Query("angle"))
	if err != nil {
		response.BadRequest(c, "Invalid angle parameter")
		return
	}
	response.Success(c, h.roseService.Spoke(angle))
}

// Position handles GET /api/v1/geometry/position?x=&y=
func (h *GeometryHandler) Position(c *gin.Context) {
	x, errX := parseFinite(c.Query("x"))
	y, errY := parseFinite(c.Query("y"))
	if errX != nil || errY != nil {
		response.BadRequest(c, "Invalid x or y parameter")
		return
	}

	pos, err := h.roseService.Position(x, y)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, pos)
}

// Rings handles GET /api/v1/geometry/rings?max=
func (h *GeometryHandler) Rings(c *gin.Context) {
	max, err := strconv.Atoi(c.DefaultQuery("max", "5"))
	if err != nil {
		response.BadRequest(c, "Invalid max parameter")
		return
	}

	rings, err := h.roseService.Rings(max)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rings)
}

// parseFinite parses a float query value, refusing NaN and infinities
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
