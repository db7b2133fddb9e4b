package domain

import (
	"context"
	"time"
)

type Note struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Title   string `gorm:"size:191;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	// OwnerID is set once at creation and never reassigned.
	OwnerID string `gorm:"size:36;index;not null" json:"ownerId"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Note) TableName() string { return "notes" }

// NoteFilter narrows List results. A non-nil empty OwnerIDs slice means
// "no owner can match" and yields an empty result.
type NoteFilter struct {
	OwnerIDs   []string
	TitleQuery string
}

type NoteRepository interface {
	Create(ctx context.Context, n *Note) error
	FindByID(ctx context.Context, id string) (*Note, error)
	// List returns notes newest-first with Owner preloaded.
	List(ctx context.Context, f NoteFilter) ([]Note, error)
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id string) error
}
