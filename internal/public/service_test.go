package public

import (
	"context"
	defErrors "errors"
	"testing"

	"dealflow/internal/domain"
	apiError "dealflow/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of the DealStore interface
type MockDealStore struct {
	mock.Mock
}

func (m *MockDealStore) FindByID(ctx context.Context, id uint64) (*domain.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

func (m *MockDealStore) FindByShareToken(ctx context.Context, token string) (*domain.Deal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deal), args.Error(1)
}

// mock implementation of the DeliverableStore interface
type MockDeliverableStore struct {
	mock.Mock
}

func (m *MockDeliverableStore) FindByID(ctx context.Context, id uint64) (*domain.Deliverable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableStore) ListByDealID(ctx context.Context, dealID uint64) ([]domain.Deliverable, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableStore) UpdateStatusWithComment(ctx context.Context, id uint64, status domain.DeliverableStatus, comment *domain.Comment) (*domain.Deliverable, error) {
	args := m.Called(ctx, id, status, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deliverable), args.Error(1)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apiError.APIError
	if !defErrors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	return apiErr.Status
}

func TestResolveDeal_UnknownToken(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	deals.On("FindByShareToken", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := service.ResolveDeal(context.Background(), "nope")

	assert.Error(t, err)
	assert.Equal(t, 404, apiStatus(t, err))
	assert.Contains(t, err.Error(), "Deal not found or invalid link")
}

// A malformed token is just an unknown token; the response is identical.
func TestResolveDeal_MalformedTokenSameAsUnknown(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	deals.On("FindByShareToken", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	_, errUnknown := service.ResolveDeal(context.Background(), "b2c64a34-0000-0000-0000-000000000000")
	_, errMalformed := service.ResolveDeal(context.Background(), "%%%garbage%%%")

	assert.Equal(t, errUnknown.(*apiError.APIError).Status, errMalformed.(*apiError.APIError).Status)
	assert.Equal(t, errUnknown.(*apiError.APIError).Message, errMalformed.(*apiError.APIError).Message)
}

func TestResolveDeal_ReturnsDealAndDeliverables(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	deal := &domain.Deal{ID: 5, UserID: 1, BrandName: "Nike", ShareToken: "tok"}
	children := []domain.Deliverable{
		{ID: 10, DealID: 5, Title: "Draft 1"},
		{ID: 11, DealID: 5, Title: "Draft 2"},
	}
	deals.On("FindByShareToken", mock.Anything, "tok").Return(deal, nil)
	deliverables.On("ListByDealID", mock.Anything, uint64(5)).Return(children, nil)

	view, err := service.ResolveDeal(context.Background(), "tok")

	assert.NoError(t, err)
	assert.Equal(t, "Nike", view.Deal.BrandName)
	assert.Len(t, view.Deliverables, 2)
	assert.Equal(t, "Draft 1", view.Deliverables[0].Title)
}

func TestBrandUpdate_RejectsNonBrandStatus(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	for _, status := range []string{"SENT", "DRAFT", "PAID", ""} {
		_, err := service.UpdateDeliverableStatus(context.Background(), 10, status, "")
		assert.Error(t, err, "status %q should be rejected", status)
		assert.Equal(t, 400, apiStatus(t, err))
		assert.Contains(t, err.Error(), "Invalid status for brand action")
	}

	deliverables.AssertNotCalled(t, "UpdateStatusWithComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBrandUpdate_ChangesRequestedNeedsComment(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	d := &domain.Deliverable{ID: 10, DealID: 5, Status: domain.DeliverableSent}
	deliverables.On("FindByID", mock.Anything, uint64(10)).Return(d, nil)

	for _, comment := range []string{"", "   ", "\n\t"} {
		_, err := service.UpdateDeliverableStatus(context.Background(), 10, "CHANGES_REQUESTED", comment)
		assert.Error(t, err)
		assert.Equal(t, 400, apiStatus(t, err))
	}

	deliverables.AssertNotCalled(t, "UpdateStatusWithComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBrandUpdate_ChangesRequestedWithComment(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	d := &domain.Deliverable{ID: 10, DealID: 5, Status: domain.DeliverableSent}
	deliverables.On("FindByID", mock.Anything, uint64(10)).Return(d, nil)

	updated := &domain.Deliverable{
		ID:     10,
		DealID: 5,
		Status: domain.DeliverableChangesRequested,
		Comments: domain.CommentLog{
			{Text: "fix audio at 0:15", AuthorRole: domain.RoleBrand},
		},
	}
	deliverables.On("UpdateStatusWithComment", mock.Anything, uint64(10),
		domain.DeliverableChangesRequested,
		mock.MatchedBy(func(c *domain.Comment) bool {
			return c != nil &&
				c.Text == "fix audio at 0:15" &&
				c.AuthorRole == domain.RoleBrand &&
				!c.CreatedAt.IsZero()
		})).Return(updated, nil)

	deals.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Deal{ID: 5, UserID: 1}, nil)

	got, err := service.UpdateDeliverableStatus(context.Background(), 10, "CHANGES_REQUESTED", "fix audio at 0:15")

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliverableChangesRequested, got.Status)
	assert.Equal(t, "fix audio at 0:15", got.Comments[0].Text)
	assert.Equal(t, domain.RoleBrand, got.Comments[0].AuthorRole)
	deliverables.AssertExpectations(t)
}

func TestBrandUpdate_ApproveWithoutComment(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	d := &domain.Deliverable{ID: 10, DealID: 5, Status: domain.DeliverableSent}
	deliverables.On("FindByID", mock.Anything, uint64(10)).Return(d, nil)

	approved := &domain.Deliverable{ID: 10, DealID: 5, Status: domain.DeliverableApproved}
	deliverables.On("UpdateStatusWithComment", mock.Anything, uint64(10),
		domain.DeliverableApproved, (*domain.Comment)(nil)).Return(approved, nil)
	deals.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Deal{ID: 5, UserID: 1}, nil)

	got, err := service.UpdateDeliverableStatus(context.Background(), 10, "APPROVED", "")

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliverableApproved, got.Status)
}

// Flipping a decision needs no comment; the earlier feedback stays in the log.
func TestBrandUpdate_OverrideAfterChangesRequested(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	d := &domain.Deliverable{
		ID:     10,
		DealID: 5,
		Status: domain.DeliverableChangesRequested,
		Comments: domain.CommentLog{
			{Text: "fix audio at 0:15", AuthorRole: domain.RoleBrand},
		},
	}
	deliverables.On("FindByID", mock.Anything, uint64(10)).Return(d, nil)

	approved := *d
	approved.Status = domain.DeliverableApproved
	deliverables.On("UpdateStatusWithComment", mock.Anything, uint64(10),
		domain.DeliverableApproved, (*domain.Comment)(nil)).Return(&approved, nil)
	deals.On("FindByID", mock.Anything, uint64(5)).Return(&domain.Deal{ID: 5, UserID: 1}, nil)

	got, err := service.UpdateDeliverableStatus(context.Background(), 10, "APPROVED", "")

	assert.NoError(t, err)
	assert.Equal(t, domain.DeliverableApproved, got.Status)
	assert.Len(t, got.Comments, 1)
}

func TestBrandUpdate_DraftNotActionable(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	d := &domain.Deliverable{ID: 10, DealID: 5, Status: domain.DeliverableDraft}
	deliverables.On("FindByID", mock.Anything, uint64(10)).Return(d, nil)

	_, err := service.UpdateDeliverableStatus(context.Background(), 10, "APPROVED", "")

	assert.Error(t, err)
	assert.Equal(t, 400, apiStatus(t, err))
}

func TestBrandUpdate_UnknownDeliverable(t *testing.T) {
	deals := new(MockDealStore)
	deliverables := new(MockDeliverableStore)
	service := NewService(deals, deliverables, nil)

	deliverables.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.UpdateDeliverableStatus(context.Background(), 404, "APPROVED", "")

	assert.Error(t, err)
	assert.Equal(t, 404, apiStatus(t, err))
}
