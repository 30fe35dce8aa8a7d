package deal

import (
	"net/http"
	"strconv"
	"time"

	"dealflow/internal/domain"
	"dealflow/internal/errors"
	"dealflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateDealRequest struct {
	BrandName string          `json:"brand_name" binding:"required,min=1,max=255"`
	Platform  string          `json:"platform" binding:"omitempty,max=64"`
	Value     decimal.Decimal `json:"value" binding:"required"`
	DueDate   time.Time       `json:"due_date" binding:"required"`
}

// Create handles POST /deals.
func (h *Handler) Create(c *gin.Context) {
	var req CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	deal := &domain.Deal{
		BrandName: req.BrandName,
		Platform:  req.Platform,
		Value:     req.Value,
		DueDate:   req.DueDate,
	}

	if err := h.service.CreateDeal(c.Request.Context(), userID.(uint64), deal); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// List handles GET /deals with pagination.
func (h *Handler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.GetDeals(c.Request.Context(), userID.(uint64), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Show handles GET /deals/:id.
func (h *Handler) Show(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	deal, err := h.service.GetDeal(c.Request.Context(), dealID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

type UpdateDealRequest struct {
	BrandName *string          `json:"brand_name" binding:"omitempty,min=1,max=255"`
	Platform  *string          `json:"platform" binding:"omitempty,max=64"`
	Value     *decimal.Decimal `json:"value"`
	DueDate   *time.Time       `json:"due_date"`
}

// Update handles PATCH /deals/:id.
func (h *Handler) Update(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	updated, err := h.service.UpdateDeal(c.Request.Context(), dealID, userID.(uint64), UpdatePatch{
		BrandName: req.BrandName,
		Platform:  req.Platform,
		Value:     req.Value,
		DueDate:   req.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type UpdateDealStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /deals/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateDealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	updated, err := h.service.UpdateDealStatus(
		c.Request.Context(),
		dealID,
		userID.(uint64),
		domain.DealStatus(req.Status),
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /deals/:id, removing the deal's deliverables first.
func (h *Handler) Delete(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	if err := h.service.DeleteDeal(c.Request.Context(), dealID, userID.(uint64)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deal removed"})
}

type CreateDeliverableRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=255"`
	Link    string `json:"link" binding:"omitempty,url"`
	Version uint   `json:"version" binding:"omitempty,gte=1"`
}

// CreateDeliverable handles POST /deals/:id/deliverables.
func (h *Handler) CreateDeliverable(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req CreateDeliverableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID, _ := c.Get("user_id")

	d := &domain.Deliverable{
		Title:   req.Title,
		Link:    req.Link,
		Version: req.Version,
	}

	if err := h.service.CreateDeliverable(c.Request.Context(), dealID, userID.(uint64), d); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, d)
}

// ListDeliverables handles GET /deals/:id/deliverables.
func (h *Handler) ListDeliverables(c *gin.Context) {
	dealID, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	userID, _ := c.Get("user_id")

	deliverables, err := h.service.ListDeliverables(c.Request.Context(), dealID, userID.(uint64))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, deliverables)
}

func parseID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("Invalid deal id", err)
	}
	return id, nil
}
