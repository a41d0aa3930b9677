package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/rose-backend-go/internal/models"
	"github.com/jengzang/rose-backend-go/internal/report"
	"github.com/jengzang/rose-backend-go/internal/service"
	"github.com/jengzang/rose-backend-go/pkg/response"
)

// DatasetHandler handles HTTP requests for datasets and their statistics
type DatasetHandler struct {
	roseService *service.RoseService
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(roseService *service.RoseService) *DatasetHandler {
	return &DatasetHandler{roseService: roseService}
}

// List handles GET /api/v1/datasets
func (h *DatasetHandler) List(c *gin.Context) {
	list, err := h.roseService.ListDatasets(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Get handles GET /api/v1/datasets/:id
func (h *DatasetHandler) Get(c *gin.Context) {
	ds, err := h.roseService.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ds)
}

// Create handles POST /api/v1/datasets
func (h *DatasetHandler) Create(c *gin.Context) {
	var req models.CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ds, err := h.roseService.CreateDataset(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, ds)
}

// Import handles POST /api/v1/datasets/import
func (h *DatasetHandler) Import(c *gin.Context) {
	var req models.ImportDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ds, err := h.roseService.ImportDataset(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, ds)
}

// AppendValues handles POST /api/v1/datasets/:id/values. A text/plain body
// is parsed like an imported file; anything else must be JSON.
func (h *DatasetHandler) AppendValues(c *gin.Context) {
	var req models.AppendValuesRequest
	if c.ContentType() == "text/plain" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
		req.Text = string(body)
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ds, err := h.roseService.AppendValues(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ds)
}

// Update handles PATCH /api/v1/datasets/:id
func (h *DatasetHandler) Update(c *gin.Context) {
	var req struct {
		Axial *bool `json:"axial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Axial == nil {
		response.BadRequest(c, "Invalid request body: axial is required")
		return
	}

	ctx := c.Request.Context()
	if err := h.roseService.SetAxial(ctx, c.Param("id"), *req.Axial); err != nil {
		response.FromError(c, err)
		return
	}
	ds, err := h.roseService.GetDataset(ctx, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ds)
}

// Delete handles DELETE /api/v1/datasets/:id
func (h *DatasetHandler) Delete(c *gin.Context) {
	if err := h.roseService.DeleteDataset(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// Statistics handles GET /api/v1/datasets/:id/statistics
func (h *DatasetHandler) Statistics(c *gin.Context) {
	var axial *bool
	if raw, ok := c.GetQuery("axial"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "Invalid axial parameter")
			return
		}
		axial = &v
	}

	stats, err := h.roseService.Statistics(c.Param("id"), axial)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, stats)
}

// Histogram handles GET /api/v1/datasets/:id/histogram
func (h *DatasetHandler) Histogram(c *gin.Context) {
	hist, err := h.roseService.Histogram(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, hist)
}

// Uniformity handles GET /api/v1/datasets/:id/uniformity
func (h *DatasetHandler) Uniformity(c *gin.Context) {
	chi, err := h.roseService.Uniformity(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, chi)
}

// Report handles GET /api/v1/datasets/:id/report
func (h *DatasetHandler) Report(c *gin.Context) {
	format, ok := report.ParseFormat(c.Query("format"))
	if !ok {
		response.BadRequest(c, "Invalid format parameter")
		return
	}

	body, err := h.roseService.Report(c.Param("id"), format)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), body)
}
