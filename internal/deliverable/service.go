package deliverable

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

// DealProvider is the slice of deal storage the deliverable workflow needs:
// ownership lookups and the status cascade.
type DealProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.Deal, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.DealStatus) (*domain.Deal, error)
}

// UpdatePatch carries the creator-facing partial update; nil fields are left
// untouched.
type UpdatePatch struct {
	Title   *string
	Link    *string
	Status  *domain.DeliverableStatus
	Version *uint
}

type Service interface {
	Update(ctx context.Context, deliverableID, userID uint64, patch UpdatePatch) (*domain.Deliverable, error)
	AppendComment(ctx context.Context, deliverableID, userID uint64, text string) (*domain.Deliverable, error)
	Delete(ctx context.Context, deliverableID, userID uint64) error
}

type DefaultService struct {
	repository Repository
	deals      DealProvider
	cache      *redis.Cache
}

func NewService(repository Repository, deals DealProvider, cache *redis.Cache) Service {
	return &DefaultService{
		repository: repository,
		deals:      deals,
		cache:      cache,
	}
}

// Update applies the provided fields. A status change goes through the shared
// transition check with the creator role; whenever the status lands on SENT
// the owning deal is moved to SENT_FOR_APPROVAL, no matter which endpoint the
// update came from.
func (s *DefaultService) Update(ctx context.Context, deliverableID, userID uint64, patch UpdatePatch) (*domain.Deliverable, error) {
	d, deal, err := s.findOwned(ctx, deliverableID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Link != nil {
		updates["link"] = *patch.Link
	}
	if patch.Version != nil {
		updates["version"] = *patch.Version
	}

	if patch.Status != nil {
		target := *patch.Status
		if !target.Valid() {
			return nil, errors.BadRequest("Invalid status", nil)
		}
		if !domain.CanTransition(d.Status, target, domain.RoleCreator) {
			return nil, errors.BadRequest(
				fmt.Sprintf("Can't move deliverable from %s to %s", d.Status, target), nil)
		}

		if target == domain.DeliverableSent {
			link := d.Link
			if patch.Link != nil {
				link = *patch.Link
			}
			if strings.TrimSpace(link) == "" {
				return nil, errors.BadRequest("missing link", nil)
			}
		}

		updates["status"] = target
	}

	if len(updates) == 0 {
		return d, nil
	}

	updated, err := s.repository.UpdateFields(ctx, deliverableID, updates)
	if err != nil {
		return nil, err
	}

	// Auto-update the deal when sending to brand
	if patch.Status != nil && *patch.Status == domain.DeliverableSent {
		if _, err := s.deals.UpdateStatus(ctx, d.DealID, domain.DealSentForApproval); err != nil {
			return nil, err
		}
	}

	s.bumpListCache(ctx, deal.UserID)
	return updated, nil
}

func (s *DefaultService) AppendComment(ctx context.Context, deliverableID, userID uint64, text string) (*domain.Deliverable, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.BadRequest("Comment text is required", nil)
	}

	_, _, err := s.findOwned(ctx, deliverableID, userID)
	if err != nil {
		return nil, err
	}

	comment := domain.Comment{
		Text:       text,
		AuthorRole: domain.RoleCreator,
		CreatedAt:  time.Now().UTC(),
	}

	return s.repository.PrependComment(ctx, deliverableID, comment)
}

func (s *DefaultService) Delete(ctx context.Context, deliverableID, userID uint64) error {
	_, deal, err := s.findOwned(ctx, deliverableID, userID)
	if err != nil {
		return err
	}

	if err := s.repository.Delete(ctx, deliverableID); err != nil {
		return err
	}

	s.bumpListCache(ctx, deal.UserID)
	return nil
}

// findOwned loads the deliverable and checks the caller owns the parent deal.
func (s *DefaultService) findOwned(ctx context.Context, deliverableID, userID uint64) (*domain.Deliverable, *domain.Deal, error) {
	d, err := s.repository.FindByID(ctx, deliverableID)
	if err != nil {
		if defErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.NotFound("Deliverable not found", err)
		}
		return nil, nil, err
	}

	deal, err := s.deals.FindByID(ctx, d.DealID)
	if err != nil || deal.UserID != userID {
		return nil, nil, errors.Unauthorized("Not authorized", err)
	}

	return d, deal, nil
}

func (s *DefaultService) bumpListCache(ctx context.Context, userID uint64) {
	s.cache.IncrementVersion(ctx, fmt.Sprintf("user:%d:deals:version", userID))
}
