package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/domain"
	"go-notes-api/pkg/utils"
)

type UserService struct {
	users domain.UserRepository
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, jwter *auth.JWTer, log *zap.Logger) *UserService {
	return &UserService{users: users, jwter: jwter, log: log}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register always stores RoleUser; clients cannot pick a role here.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.PublicUser, error) {
	u, err := s.createUser(ctx, in.Name, in.Email, in.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

type AdminCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *UserService) AdminCreate(ctx context.Context, in AdminCreateInput) (*domain.PublicUser, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.BadRequest("unknown role")
	}
	u, err := s.createUser(ctx, in.Name, in.Email, in.Password, role)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (s *UserService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, domain.BadRequest("name is required")
	}
	if len(password) < 6 {
		return nil, domain.BadRequest("password must be at least 6 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("lookup user failed", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateEmail
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
	}
	// The pre-check above races with concurrent registrations; the
	// unique index is the backstop and surfaces as ErrDuplicateEmail.
	if err := s.users.Create(ctx, u); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, domain.Internal("create user failed", err)
	}
	s.log.Info("user created", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login answers the same error for unknown email and wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.Internal("lookup user failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}
	token, err := s.jwter.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", domain.Internal("issue token failed", err)
	}
	return token, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// UserPatch fields left nil are not touched.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// Update applies a partial patch. Callers may update themselves; Admins
// may update anyone. A role change from a non-Admin caller is dropped
// silently while the rest of the patch still applies.
func (s *UserService) Update(ctx context.Context, caller *auth.Claims, id string, patch UserPatch) (*domain.PublicUser, error) {
	if caller.UID != id && caller.Role != domain.RoleAdmin {
		return nil, domain.Forbidden("cannot modify another user")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("lookup user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, domain.BadRequest("name cannot be empty")
		}
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" {
			return nil, domain.BadRequest("email cannot be empty")
		}
		u.Email = email
	}
	if patch.Password != nil {
		if len(*patch.Password) < 6 {
			return nil, domain.BadRequest("password must be at least 6 characters")
		}
		u.PasswordHash = utils.HashPassword(*patch.Password)
	}
	if patch.Role != nil && caller.Role == domain.RoleAdmin {
		role, ok := domain.ParseRole(*patch.Role)
		if !ok {
			return nil, domain.BadRequest("unknown role")
		}
		u.Role = role
	}

	if err := s.users.Update(ctx, u); err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, domain.Internal("update user failed", err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.Internal("lookup user failed", err)
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return domain.Internal("delete user failed", err)
	}
	s.log.Info("user deleted", zap.String("id", id))
	return nil
}
