package deal

import (
	"context"
	"time"

	"dealflow/internal/domain"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, deal *domain.Deal) error
	FindByID(ctx context.Context, id uint64) (*domain.Deal, error)
	FindByShareToken(ctx context.Context, token string) (*domain.Deal, error)
	ListByUserID(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Deal, ListMeta, error)
	UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) (*domain.Deal, error)
	UpdateStatus(ctx context.Context, id uint64, status domain.DealStatus) (*domain.Deal, error)
	Delete(ctx context.Context, id uint64) error
}

type ListMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPage   int   `json:"total_page"`
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, deal *domain.Deal) error {
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).First(&deal, id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// FindByShareToken is an exact, case-sensitive match; no normalization.
func (r *RepositoryImpl) FindByShareToken(ctx context.Context, token string) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).Where("share_token = ?", token).First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *RepositoryImpl) ListByUserID(ctx context.Context, userID uint64, page, pageSize int) ([]domain.Deal, ListMeta, error) {
	var deals []domain.Deal
	var totalRecords int64

	if err := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
		Where("user_id = ?", userID).
		Count(&totalRecords).Error; err != nil {
		return deals, ListMeta{}, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&deals).Error

	totalPages := int((totalRecords + int64(pageSize) - 1) / int64(pageSize))

	return deals, ListMeta{
		Total:       totalRecords,
		PerPage:     pageSize,
		TotalPage:   totalPages,
		CurrentPage: page,
	}, err
}

func (r *RepositoryImpl) UpdateFields(ctx context.Context, id uint64, updates map[string]interface{}) (*domain.Deal, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Deal{}).
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

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id uint64, status domain.DealStatus) (*domain.Deal, error) {
	return r.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, id).Error
}
