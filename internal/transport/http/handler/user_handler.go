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

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Mount(api *gin.RouterGroup, jwter *auth.JWTer) {
	ezPublic := httpez.New(api)
	ezSelf := httpez.New(api.Group("", mdw.RequireAuth(jwter)))
	ezAdmin := httpez.New(api.Group("", mdw.RequireAuth(jwter), mdw.RequireRoles(domain.RoleAdmin)))

	type registerIn struct {
		Name     string `json:"name"     binding:"required,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	httpez.Register(ezPublic, httpez.Action[registerIn, *domain.PublicUser]{
		Method: http.MethodPost,
		Path:   "/users/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *registerIn) (*domain.PublicUser, error) {
			return h.svc.Register(c.Request.Context(), service.RegisterInput{
				Name: in.Name, Email: in.Email, Password: in.Password,
			})
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	type loginOut struct {
		Token string `json:"token"`
	}
	httpez.Register(ezPublic, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/users/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			token, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			return loginOut{Token: token}, nil
		},
	})

	type createIn struct {
		Name     string `json:"name"     binding:"required,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"     binding:"omitempty"`
	}
	httpez.Register(ezAdmin, httpez.Action[createIn, *domain.PublicUser]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createIn) (*domain.PublicUser, error) {
			return h.svc.AdminCreate(c.Request.Context(), service.AdminCreateInput{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
		},
	})

	httpez.Register(ezAdmin, httpez.Action[struct{}, []domain.PublicUser]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.PublicUser, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	type patchIn struct {
		Name     *string `json:"name"     binding:"omitempty,max=64"`
		Email    *string `json:"email"    binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=6"`
		Role     *string `json:"role"     binding:"omitempty"`
	}
	httpez.Register(ezSelf, httpez.Action[patchIn, *domain.PublicUser]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *patchIn) (*domain.PublicUser, error) {
			caller, _ := mdw.Identity(c)
			return h.svc.Update(c.Request.Context(), caller, c.Param("id"), service.UserPatch{
				Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
			})
		},
	})

	type confirmOut struct {
		ID string `json:"id"`
	}
	httpez.Register(ezAdmin, httpez.Action[struct{}, confirmOut]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (confirmOut, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return confirmOut{}, err
			}
			return confirmOut{ID: id}, nil
		},
	})
}
