package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AuthorRole string

const (
	RoleCreator AuthorRole = "CREATOR"
	RoleBrand   AuthorRole = "BRAND"
)

// Comment is a single entry in a deliverable's feedback log. Comments are
// never edited or deleted once written.
type Comment struct {
	Text       string     `json:"text"`
	AuthorRole AuthorRole `json:"author_role"`
	CreatedAt  time.Time  `json:"created_at"`
}

// CommentLog is the embedded feedback log, newest first. Insertion order is
// the display order; new comments are prepended at the store level so
// concurrent appends never clobber each other.
type CommentLog []Comment

func (l CommentLog) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *CommentLog) Scan(value interface{}) error {
	if value == nil {
		*l = CommentLog{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported comment log column type %T", value)
	}

	return json.Unmarshal(data, l)
}

type Deliverable struct {
	ID        uint64            `json:"id" gorm:"primaryKey"`
	DealID    uint64            `json:"deal_id" gorm:"index;not null"`
	Title     string            `json:"title" gorm:"not null"`
	Link      string            `json:"link"`
	Version   uint              `json:"version" gorm:"default:1"`
	Status    DeliverableStatus `json:"status" gorm:"type:varchar(32);default:'DRAFT'"`
	Comments  CommentLog        `json:"comments" gorm:"type:jsonb;default:'[]'"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// DeliverableSummary is the compact per-deliverable view embedded in
// deal listings.
type DeliverableSummary struct {
	DealID uint64            `json:"-"`
	Title  string            `json:"title"`
	Status DeliverableStatus `json:"status"`
}
