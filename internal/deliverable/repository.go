package deliverable

import (
	"context"
	"encoding/json"
	"time"

	"dealflow/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, d *domain.Deliverable) error
	FindByID(ctx context.Context, id uint64) (*domain.Deliverable, error)
	ListByDealID(ctx context.Context, dealID uint64) ([]domain.Deliverable, error)
	SummariesByDealIDs(ctx context.Context, dealIDs []uint64) ([]domain.DeliverableSummary, error)
	UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) (*domain.Deliverable, error)
	UpdateStatusWithComment(ctx context.Context, id uint64, status domain.DeliverableStatus, comment *domain.Comment) (*domain.Deliverable, error)
	PrependComment(ctx context.Context, id uint64, comment domain.Comment) (*domain.Deliverable, error)
	Delete(ctx context.Context, id uint64) error
	DeleteByDealID(ctx context.Context, dealID uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

const returningColumns = "id, deal_id, title, link, version, status, comments, created_at, updated_at"

func (r *RepositoryImpl) Create(ctx context.Context, d *domain.Deliverable) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Deliverable, error) {
	var d domain.Deliverable
	err := r.db.WithContext(ctx).First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RepositoryImpl) ListByDealID(ctx context.Context, dealID uint64) ([]domain.Deliverable, error) {
	var deliverables []domain.Deliverable
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC, id ASC").
		Find(&deliverables).Error
	return deliverables, err
}

func (r *RepositoryImpl) SummariesByDealIDs(ctx context.Context, dealIDs []uint64) ([]domain.DeliverableSummary, error) {
	if len(dealIDs) == 0 {
		return []domain.DeliverableSummary{}, nil
	}

	var summaries []domain.DeliverableSummary
	err := r.db.WithContext(ctx).
		Model(&domain.Deliverable{}).
		Where("deal_id IN ?", dealIDs).
		Order("created_at ASC, id ASC").
		Select("deal_id, title, status").
		Scan(&summaries).Error
	return summaries, err
}

func (r *RepositoryImpl) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) (*domain.Deliverable, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Deliverable{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// UpdateStatusWithComment sets the status and, when a comment is given,
// prepends it to the log in the same statement. The jsonb concatenation is a
// single atomic UPDATE so concurrent comments are never lost to a
// read-then-save cycle.
func (r *RepositoryImpl) UpdateStatusWithComment(ctx context.Context, id uint64, status domain.DeliverableStatus, comment *domain.Comment) (*domain.Deliverable, error) {
	now := time.Now().UTC()

	var d domain.Deliverable
	var res *gorm.DB
	if comment != nil {
		entry, err := marshalLogEntry(*comment)
		if err != nil {
			return nil, err
		}
		res = r.db.WithContext(ctx).Raw(`
			UPDATE deliverables
			SET status = ?,
			    comments = ?::jsonb || comments,
			    updated_at = ?
			WHERE id = ?
			RETURNING `+returningColumns,
			status, entry, now, id).Scan(&d)
	} else {
		res = r.db.WithContext(ctx).Raw(`
			UPDATE deliverables
			SET status = ?,
			    updated_at = ?
			WHERE id = ?
			RETURNING `+returningColumns,
			status, now, id).Scan(&d)
	}

	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

// PrependComment pushes a comment onto the head of the log atomically.
func (r *RepositoryImpl) PrependComment(ctx context.Context, id uint64, comment domain.Comment) (*domain.Deliverable, error) {
	entry, err := marshalLogEntry(comment)
	if err != nil {
		return nil, err
	}

	var d domain.Deliverable
	res := r.db.WithContext(ctx).Raw(`
		UPDATE deliverables
		SET comments = ?::jsonb || comments,
		    updated_at = ?
		WHERE id = ?
		RETURNING `+returningColumns,
		entry, time.Now().UTC(), id).Scan(&d)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Deliverable{}, id).Error
}

func (r *RepositoryImpl) DeleteByDealID(ctx context.Context, dealID uint64) error {
	return r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Delete(&domain.Deliverable{}).Error
}

// marshalLogEntry renders a comment as a one-element jsonb array for the
// prepend concatenation.
func marshalLogEntry(c domain.Comment) (string, error) {
	b, err := json.Marshal([]domain.Comment{c})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
