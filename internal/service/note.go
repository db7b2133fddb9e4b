package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/domain"
	"go-notes-api/pkg/utils"
)

// NoteService owns the note authorization rules: owners and Admins may
// write, everyone may read. Writes are read-then-act with no CAS, so
// two concurrent authorized writers race to last-write-wins and a
// delete racing an update turns the loser into a 404. Accepted.
type NoteService struct {
	notes domain.NoteRepository
	users domain.UserRepository
	log   *zap.Logger
}

func NewNoteService(notes domain.NoteRepository, users domain.UserRepository, log *zap.Logger) *NoteService {
	return &NoteService{notes: notes, users: users, log: log}
}

type NoteInput struct {
	Title   string
	Content string
}

type NoteOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type NoteView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Owner     NoteOwner `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	CanEdit   bool      `json:"canEdit"`
}

type NoteListFilter struct {
	OwnerID string
	Title   string
	Author  string
}

func (s *NoteService) Create(ctx context.Context, caller *auth.Claims, in NoteInput) (*domain.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.BadRequest("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.BadRequest("content is required")
	}
	// The owner comes from the verified token, never from the body,
	// and must still resolve to a live account.
	owner, err := s.users.FindByID(ctx, caller.UID)
	if err != nil {
		return nil, domain.Internal("lookup owner failed", err)
	}
	if owner == nil {
		return nil, domain.Unauthorized("account no longer exists")
	}

	n := &domain.Note{
		ID:      utils.NewID(),
		Title:   title,
		Content: in.Content,
		OwnerID: owner.ID,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, domain.Internal("create note failed", err)
	}
	s.log.Info("note created", zap.String("id", n.ID), zap.String("owner", n.OwnerID))
	return n, nil
}

// List is public. caller may be nil (anonymous or invalid token); it
// only influences the derived canEdit flag.
func (s *NoteService) List(ctx context.Context, caller *auth.Claims, f NoteListFilter) ([]NoteView, error) {
	var ownerIDs []string
	if f.OwnerID != "" {
		ownerIDs = []string{f.OwnerID}
	}
	if q := strings.TrimSpace(f.Author); q != "" {
		ids, err := s.users.SearchIDs(ctx, q)
		if err != nil {
			return nil, domain.Internal("author lookup failed", err)
		}
		// no matching author means no matching notes, not an error
		ownerIDs = intersect(ownerIDs, ids)
		if len(ownerIDs) == 0 {
			return []NoteView{}, nil
		}
	}

	notes, err := s.notes.List(ctx, domain.NoteFilter{OwnerIDs: ownerIDs, TitleQuery: f.Title})
	if err != nil {
		return nil, domain.Internal("list notes failed", err)
	}

	out := make([]NoteView, 0, len(notes))
	for i := range notes {
		n := &notes[i]
		out = append(out, NoteView{
			ID:        n.ID,
			Title:     n.Title,
			Content:   n.Content,
			Owner:     NoteOwner{ID: n.Owner.ID, Name: n.Owner.Name, Email: n.Owner.Email},
			CreatedAt: n.CreatedAt,
			CanEdit:   canEdit(caller, n),
		})
	}
	return out, nil
}

// Update replaces title and content wholesale; both are required.
func (s *NoteService) Update(ctx context.Context, caller *auth.Claims, id string, in NoteInput) (*domain.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.BadRequest("title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.BadRequest("content is required")
	}
	n, err := s.authorized(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	n.Title = title
	n.Content = in.Content
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, domain.Internal("update note failed", err)
	}
	return n, nil
}

func (s *NoteService) Delete(ctx context.Context, caller *auth.Claims, id string) error {
	n, err := s.authorized(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, n.ID); err != nil {
		return domain.Internal("delete note failed", err)
	}
	s.log.Info("note deleted", zap.String("id", n.ID), zap.String("by", caller.UID))
	return nil
}

// authorized resolves the note and enforces owner-or-Admin. NotFound
// wins over Forbidden so callers cannot probe for ids they may not
// touch.
func (s *NoteService) authorized(ctx context.Context, caller *auth.Claims, id string) (*domain.Note, error) {
	n, err := s.notes.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("lookup note failed", err)
	}
	if n == nil {
		return nil, domain.NotFound("note not found")
	}
	if caller.Role != domain.RoleAdmin && caller.UID != n.OwnerID {
		return nil, domain.Forbidden("not the owner of this note")
	}
	return n, nil
}

func canEdit(caller *auth.Claims, n *domain.Note) bool {
	if caller == nil {
		return false
	}
	return caller.Role == domain.RoleAdmin || caller.UID == n.OwnerID
}

// intersect treats a nil base as unconstrained.
func intersect(base, found []string) []string {
	if base == nil {
		return found
	}
	set := make(map[string]struct{}, len(found))
	for _, id := range found {
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(base))
	for _, id := range base {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
