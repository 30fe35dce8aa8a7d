package deal

import (
	"context"
	defErrors "errors"
	"fmt"
	"time"

	"dealflow/internal/domain"
	"dealflow/internal/errors"
	"dealflow/internal/worker"
	"dealflow/redis"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DeliverableStore is the slice of deliverable storage the deal side needs:
// creating and listing children, summaries for deal listings, and the
// cascade delete.
type DeliverableStore interface {
	Create(ctx context.Context, d *domain.Deliverable) error
	ListByDealID(ctx context.Context, dealID uint64) ([]domain.Deliverable, error)
	SummariesByDealIDs(ctx context.Context, dealIDs []uint64) ([]domain.DeliverableSummary, error)
	DeleteByDealID(ctx context.Context, dealID uint64) error
}

type UpdatePatch struct {
	BrandName *string
	Platform  *string
	Value     *decimal.Decimal
	DueDate   *time.Time
}

type Service interface {
	CreateDeal(ctx context.Context, userID uint64, deal *domain.Deal) error
	GetDeals(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedDeals, error)
	GetDeal(ctx context.Context, dealID, userID uint64) (*domain.Deal, error)
	UpdateDeal(ctx context.Context, dealID, userID uint64, patch UpdatePatch) (*domain.Deal, error)
	UpdateDealStatus(ctx context.Context, dealID, userID uint64, status domain.DealStatus) (*domain.Deal, error)
	DeleteDeal(ctx context.Context, dealID, userID uint64) error
	CreateDeliverable(ctx context.Context, dealID, userID uint64, d *domain.Deliverable) error
	ListDeliverables(ctx context.Context, dealID, userID uint64) ([]domain.Deliverable, error)
}

type DefaultService struct {
	repository   Repository
	deliverables DeliverableStore
	cache        *redis.Cache
	workers      *worker.WorkerPool
}

func NewService(
	repository Repository,
	deliverables DeliverableStore,
	cache *redis.Cache,
	workers *worker.WorkerPool,
) Service {
	return &DefaultService{
		repository:   repository,
		deliverables: deliverables,
		cache:        cache,
		workers:      workers,
	}
}

// CreateDeal mints the share token once here; it never changes afterwards.
func (s *DefaultService) CreateDeal(ctx context.Context, userID uint64, deal *domain.Deal) error {
	deal.UserID = userID
	deal.ShareToken = uuid.NewString()
	if deal.Status == "" {
		deal.Status = domain.DealConfirmed
	}

	if err := s.repository.Create(ctx, deal); err != nil {
		return err
	}

	s.bumpListCache(ctx, userID)
	return nil
}

// DealListItem is one row of the creator's dashboard listing, with a compact
// view of each deliverable.
type DealListItem struct {
	ID           uint64                      `json:"id"`
	BrandName    string                      `json:"brand_name"`
	Platform     string                      `json:"platform"`
	Value        decimal.Decimal             `json:"value"`
	DueDate      time.Time                   `json:"due_date"`
	Status       domain.DealStatus           `json:"status"`
	ShareToken   string                      `json:"share_token"`
	CreatedAt    time.Time                   `json:"created_at"`
	Deliverables []domain.DeliverableSummary `json:"deliverables"`
}

type PaginatedDeals struct {
	Data []DealListItem `json:"data"`
	Meta ListMeta       `json:"meta"`
}

func (s *DefaultService) GetDeals(ctx context.Context, userID uint64, page, pageSize int) (*PaginatedDeals, error) {
	versionKey := fmt.Sprintf("user:%d:deals:version", userID)
	v := s.cache.GetVersion(ctx, versionKey)

	cacheKey := fmt.Sprintf("deals:u:%d:v:%d:p:%d:ps:%d", userID, v, page, pageSize)

	var result PaginatedDeals
	found, _ := s.cache.Get(ctx, cacheKey, &result)
	if found {
		return &result, nil
	}

	deals, meta, err := s.repository.ListByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	summaries, err := s.deliverables.SummariesByDealIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byDeal := make(map[uint64][]domain.DeliverableSummary, len(deals))
	for _, sum := range summaries {
		byDeal[sum.DealID] = append(byDeal[sum.DealID], sum)
	}

	items := make([]DealListItem, 0, len(deals))
	for _, d := range deals {
		children := byDeal[d.ID]
		if children == nil {
			children = []domain.DeliverableSummary{}
		}
		items = append(items, DealListItem{
			ID:           d.ID,
			BrandName:    d.BrandName,
			Platform:     d.Platform,
			Value:        d.Value,
			DueDate:      d.DueDate,
			Status:       d.Status,
			ShareToken:   d.ShareToken,
			CreatedAt:    d.CreatedAt,
			Deliverables: children,
		})
	}

	result = PaginatedDeals{Data: items, Meta: meta}

	if s.workers != nil {
		cached := result
		s.workers.Submit(func(taskCtx context.Context) error {
			return s.cache.Set(taskCtx, cacheKey, cached, 24*time.Hour)
		})
	}

	return &result, nil
}

func (s *DefaultService) GetDeal(ctx context.Context, dealID, userID uint64) (*domain.Deal, error) {
	return s.findOwned(ctx, dealID, userID)
}

func (s *DefaultService) UpdateDeal(ctx context.Context, dealID, userID uint64, patch UpdatePatch) (*domain.Deal, error) {
	if _, err := s.findOwned(ctx, dealID, userID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.BrandName != nil {
		updates["brand_name"] = *patch.BrandName
	}
	if patch.Platform != nil {
		updates["platform"] = *patch.Platform
	}
	if patch.Value != nil {
		updates["value"] = *patch.Value
	}
	if patch.DueDate != nil {
		updates["due_date"] = *patch.DueDate
	}

	if len(updates) == 0 {
		return s.repository.FindByID(ctx, dealID)
	}

	updated, err := s.repository.UpdateFields(ctx, dealID, updates)
	if err != nil {
		return nil, err
	}

	s.bumpListCache(ctx, userID)
	return updated, nil
}

func (s *DefaultService) UpdateDealStatus(ctx context.Context, dealID, userID uint64, status domain.DealStatus) (*domain.Deal, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid status", nil)
	}

	if _, err := s.findOwned(ctx, dealID, userID); err != nil {
		return nil, err
	}

	updated, err := s.repository.UpdateStatus(ctx, dealID, status)
	if err != nil {
		return nil, err
	}

	s.bumpListCache(ctx, userID)
	return updated, nil
}

// DeleteDeal removes the deliverables first, then the deal. If the second
// step fails the deal is left behind with no children.
func (s *DefaultService) DeleteDeal(ctx context.Context, dealID, userID uint64) error {
	if _, err := s.findOwned(ctx, dealID, userID); err != nil {
		return err
	}

	if err := s.deliverables.DeleteByDealID(ctx, dealID); err != nil {
		return err
	}
	if err := s.repository.Delete(ctx, dealID); err != nil {
		return err
	}

	s.bumpListCache(ctx, userID)
	return nil
}

func (s *DefaultService) CreateDeliverable(ctx context.Context, dealID, userID uint64, d *domain.Deliverable) error {
	if _, err := s.findOwned(ctx, dealID, userID); err != nil {
		return err
	}

	d.DealID = dealID
	if d.Version == 0 {
		d.Version = 1
	}
	if d.Status == "" {
		d.Status = domain.DeliverableDraft
	}
	if d.Comments == nil {
		d.Comments = domain.CommentLog{}
	}

	if err := s.deliverables.Create(ctx, d); err != nil {
		return err
	}

	s.bumpListCache(ctx, userID)
	return nil
}

func (s *DefaultService) ListDeliverables(ctx context.Context, dealID, userID uint64) ([]domain.Deliverable, error) {
	if _, err := s.findOwned(ctx, dealID, userID); err != nil {
		return nil, err
	}

	return s.deliverables.ListByDealID(ctx, dealID)
}

// findOwned loads the deal and checks the caller owns it.
func (s *DefaultService) findOwned(ctx context.Context, dealID, userID uint64) (*domain.Deal, error) {
	deal, err := s.repository.FindByID(ctx, dealID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Deal not found", err)
		}
		return nil, err
	}

	if deal.UserID != userID {
		return nil, errors.Unauthorized("Not authorized", nil)
	}

	return deal, nil
}

func (s *DefaultService) bumpListCache(ctx context.Context, userID uint64) {
	s.cache.IncrementVersion(ctx, fmt.Sprintf("user:%d:deals:version", userID))
}
