package deliverable

import (
	"net/http"
	"strconv"

	"dealflow/internal/domain"
	"dealflow/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type UpdateDeliverableRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=255"`
	Link    *string `json:"link" binding:"omitempty,url"`
	Status  *string `json:"status"`
	Version *uint   `json:"version" binding:"omitempty,gte=1"`
}

// Update handles PATCH /deliverables/:id for the owning creator.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid deliverable id", err))
		return
	}

	var req UpdateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	patch := UpdatePatch{
		Title:   req.Title,
		Link:    req.Link,
		Version: req.Version,
	}
	if req.Status != nil {
		status := domain.DeliverableStatus(*req.Status)
		patch.Status = &status
	}

	updated, err := h.service.Update(c.Request.Context(), id, userID.(uint64), patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment handles POST /deliverables/:id/comments. The comment is always
// tagged CREATOR; brand comments only enter through the public endpoint.
func (h *Handler) AddComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid deliverable id", err))
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	updated, err := h.service.AppendComment(c.Request.Context(), id, userID.(uint64), req.Text)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /deliverables/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest("Invalid deliverable id", err))
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.Delete(c.Request.Context(), id, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deliverable removed"})
}
