package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealStatus string

const (
	DealConfirmed       DealStatus = "CONFIRMED"
	DealInProduction    DealStatus = "IN_PRODUCTION"
	DealSentForApproval DealStatus = "SENT_FOR_APPROVAL"
	DealPosted          DealStatus = "POSTED"
	DealPaymentPending  DealStatus = "PAYMENT_PENDING"
	DealPaid            DealStatus = "PAID"
)

func (s DealStatus) Valid() bool {
	switch s {
	case DealConfirmed, DealInProduction, DealSentForApproval,
		DealPosted, DealPaymentPending, DealPaid:
		return true
	}
	return false
}

// Deal is a sponsorship agreement between a creator and a brand.
// ShareToken is minted once at creation and never regenerated; it is
// the only credential a brand needs to view and review deliverables.
type Deal struct {
	ID         uint64          `json:"id" gorm:"primaryKey"`
	UserID     uint64          `json:"user_id" gorm:"index;not null"`
	BrandName  string          `json:"brand_name" gorm:"not null"`
	Platform   string          `json:"platform"`
	Value      decimal.Decimal `json:"value" gorm:"type:numeric(12,2)"`
	DueDate    time.Time       `json:"due_date"`
	ShareToken string          `json:"share_token" gorm:"uniqueIndex;size:64"`
	Status     DealStatus      `json:"status" gorm:"type:varchar(32);default:'CONFIRMED'"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
