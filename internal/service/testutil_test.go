package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/domain"
	"go-notes-api/internal/repo"
)

type fixture struct {
	users   *repo.UserRepo
	notes   *repo.NoteRepo
	jwter   *auth.JWTer
	userSvc *UserService
	noteSvc *NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Note{}))

	users := repo.NewUserRepo(db)
	notes := repo.NewNoteRepo(db)
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "notes-test", TTL: time.Hour}
	log := zap.NewNop()

	return &fixture{
		users:   users,
		notes:   notes,
		jwter:   jwter,
		userSvc: NewUserService(users, jwter, log),
		noteSvc: NewNoteService(notes, users, log),
	}
}

func (f *fixture) register(t *testing.T, name, email string) *domain.PublicUser {
	t.Helper()
	u, err := f.userSvc.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) claimsFor(t *testing.T, id string) *auth.Claims {
	t.Helper()
	u, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return &auth.Claims{UID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) makeAdmin(t *testing.T, name, email string) *domain.PublicUser {
	t.Helper()
	u, err := f.userSvc.AdminCreate(context.Background(), AdminCreateInput{
		Name: name, Email: email, Password: "secret1", Role: string(domain.RoleAdmin),
	})
	require.NoError(t, err)
	return u
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*domain.Error)
	require.True(t, ok, "expected *domain.Error, got %T: %v", err, err)
	return de.Status
}
