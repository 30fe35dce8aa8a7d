package public

import (
	"net/http"
	"strconv"

	"dealflow/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ShowDeal handles GET /public/deals/:token.
func (h *Handler) ShowDeal(c *gin.Context) {
	view, err := h.service.ResolveDeal(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type BrandStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// UpdateDeliverableStatus handles PATCH /public/deliverables/:id/status.
func (h *Handler) UpdateDeliverableStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Deliverable not found", err))
		return
	}

	var req BrandStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	updated, err := h.service.UpdateDeliverableStatus(c.Request.Context(), id, req.Status, req.Comment)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
