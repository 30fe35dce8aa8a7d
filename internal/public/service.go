// Package public is the unauthenticated brand-facing surface. A share token
// resolves to a deal; everything else on this surface trusts that the caller
// got the deliverable id from a previously resolved token. The status
// endpoint performs no token re-validation per deliverable.
package public

import (
	"context"
	defErrors "errors"
	"fmt"
	"strings"
	"time"

	"dealflow/internal/domain"
	"dealflow/internal/errors"
	"dealflow/redis"

	"gorm.io/gorm"
)

// DealStore is the slice of deal storage the public surface needs.
type DealStore interface {
	FindByID(ctx context.Context, id uint64) (*domain.Deal, error)
	FindByShareToken(ctx context.Context, token string) (*domain.Deal, error)
}

// DeliverableStore is the slice of deliverable storage the public surface
// needs.
type DeliverableStore interface {
	FindByID(ctx context.Context, id uint64) (*domain.Deliverable, error)
	ListByDealID(ctx context.Context, dealID uint64) ([]domain.Deliverable, error)
	UpdateStatusWithComment(ctx context.Context, id uint64, status domain.DeliverableStatus, comment *domain.Comment) (*domain.Deliverable, error)
}

// DealView is the brand's view of a deal: the deal plus its deliverables in
// creation order.
type DealView struct {
	Deal         *domain.Deal         `json:"deal"`
	Deliverables []domain.Deliverable `json:"deliverables"`
}

type Service interface {
	ResolveDeal(ctx context.Context, token string) (*DealView, error)
	UpdateDeliverableStatus(ctx context.Context, deliverableID uint64, status string, comment string) (*domain.Deliverable, error)
}

type DefaultService struct {
	deals        DealStore
	deliverables DeliverableStore
	cache        *redis.Cache
}

func NewService(deals DealStore, deliverables DeliverableStore, cache *redis.Cache) Service {
	return &DefaultService{
		deals:        deals,
		deliverables: deliverables,
		cache:        cache,
	}
}

// ResolveDeal maps a share token to its deal. An unknown token and a
// malformed one produce the same NotFound; the response never hints whether
// a token almost matched.
func (s *DefaultService) ResolveDeal(ctx context.Context, token string) (*DealView, error) {
	deal, err := s.deals.FindByShareToken(ctx, token)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Deal not found or invalid link", err)
		}
		return nil, err
	}

	deliverables, err := s.deliverables.ListByDealID(ctx, deal.ID)
	if err != nil {
		return nil, err
	}

	return &DealView{Deal: deal, Deliverables: deliverables}, nil
}

// UpdateDeliverableStatus is the brand decision endpoint. Only APPROVED and
// CHANGES_REQUESTED are accepted; a change request straight from SENT must
// carry a comment saying what to change, while flipping between the two
// decisions afterwards needs none. The comment, when present, is written
// BRAND-tagged in the same atomic statement as the status.
func (s *DefaultService) UpdateDeliverableStatus(ctx context.Context, deliverableID uint64, status string, comment string) (*domain.Deliverable, error) {
	target := domain.DeliverableStatus(status)
	if !target.BrandActionable() {
		return nil, errors.BadRequest("Invalid status for brand action", nil)
	}

	d, err := s.deliverables.FindByID(ctx, deliverableID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Deliverable not found", err)
		}
		return nil, err
	}

	if !domain.CanTransition(d.Status, target, domain.RoleBrand) {
		return nil, errors.BadRequest(
			fmt.Sprintf("Can't move deliverable from %s to %s", d.Status, target), nil)
	}

	trimmed := strings.TrimSpace(comment)
	if target == domain.DeliverableChangesRequested &&
		d.Status == domain.DeliverableSent &&
		trimmed == "" {
		return nil, errors.BadRequest("A comment describing the requested changes is required", nil)
	}

	var entry *domain.Comment
	if trimmed != "" {
		entry = &domain.Comment{
			Text:       comment,
			AuthorRole: domain.RoleBrand,
			CreatedAt:  time.Now().UTC(),
		}
	}

	updated, err := s.deliverables.UpdateStatusWithComment(ctx, deliverableID, target, entry)
	if err != nil {
		return nil, err
	}

	// Brand decisions change the summaries on the creator's dashboard list.
	if deal, err := s.deals.FindByID(ctx, d.DealID); err == nil {
		s.cache.IncrementVersion(ctx, fmt.Sprintf("user:%d:deals:version", deal.UserID))
	}

	return updated, nil
}
