package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go-notes-api/internal/domain"
)

type NoteRepo struct{ db *gorm.DB }

func NewNoteRepo(db *gorm.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	// Omit the association: the owner row already exists and is never
	// written through a note.
	return r.db.WithContext(ctx).Omit("Owner").Create(n).Error
}

func (r *NoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) List(ctx context.Context, f domain.NoteFilter) ([]domain.Note, error) {
	if f.OwnerIDs != nil && len(f.OwnerIDs) == 0 {
		return []domain.Note{}, nil
	}
	q := r.db.WithContext(ctx).Model(&domain.Note{}).Preload("Owner")
	if len(f.OwnerIDs) > 0 {
		q = q.Where("owner_id IN ?", f.OwnerIDs)
	}
	if s := strings.TrimSpace(f.TitleQuery); s != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	var notes []domain.Note
	err := q.Order("created_at desc").Find(&notes).Error
	return notes, err
}

func (r *NoteRepo) Update(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(n).Error
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Note{}).Error
}
