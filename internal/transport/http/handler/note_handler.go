package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/domain"
	"go-notes-api/internal/service"
	httpez "go-notes-api/internal/transport/http/ez"
	mdw "go-notes-api/internal/transport/http/middleware"
)

type NoteHandler struct {
	svc *service.NoteService
}

func NewNoteHandler(svc *service.NoteService) *NoteHandler { return &NoteHandler{svc: svc} }

func (h *NoteHandler) Mount(api *gin.RouterGroup, jwter *auth.JWTer) {
	ezPublic := httpez.New(api.Group("", mdw.OptionalAuth(jwter)))
	ezAuthed := httpez.New(api.Group("", mdw.RequireAuth(jwter)))
	// Guests read like everyone else but never write.
	ezWriter := httpez.New(api.Group("", mdw.RequireAuth(jwter), mdw.RequireRoles(domain.RoleAdmin, domain.RoleUser)))

	type noteIn struct {
		Title   string `json:"title"   binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	httpez.Register(ezWriter, httpez.Action[noteIn, *domain.Note]{
		Method: http.MethodPost,
		Path:   "/notes",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *noteIn) (*domain.Note, error) {
			caller, _ := mdw.Identity(c)
			return h.svc.Create(c.Request.Context(), caller, service.NoteInput{
				Title: in.Title, Content: in.Content,
			})
		},
	})

	type listQ struct {
		Owner  string `form:"owner"`
		Title  string `form:"title"`
		Author string `form:"author"`
	}
	httpez.Register(ezPublic, httpez.Action[listQ, []service.NoteView]{
		Method: http.MethodGet,
		Path:   "/notes",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) ([]service.NoteView, error) {
			caller, _ := mdw.Identity(c)
			return h.svc.List(c.Request.Context(), caller, service.NoteListFilter{
				OwnerID: in.Owner, Title: in.Title, Author: in.Author,
			})
		},
	})

	httpez.Register(ezAuthed, httpez.Action[noteIn, *domain.Note]{
		Method: http.MethodPut,
		Path:   "/notes/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *noteIn) (*domain.Note, error) {
			caller, _ := mdw.Identity(c)
			return h.svc.Update(c.Request.Context(), caller, c.Param("id"), service.NoteInput{
				Title: in.Title, Content: in.Content,
			})
		},
	})

	type confirmOut struct {
		ID string `json:"id"`
	}
	httpez.Register(ezAuthed, httpez.Action[struct{}, confirmOut]{
		Method: http.MethodDelete,
		Path:   "/notes/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (confirmOut, error) {
			caller, _ := mdw.Identity(c)
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
				return confirmOut{}, err
			}
			return confirmOut{ID: id}, nil
		},
	})
}
