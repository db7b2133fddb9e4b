package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/core/cache"
	"go-notes-api/internal/core/config"
	"go-notes-api/internal/domain"
	"go-notes-api/internal/repo"
	"go-notes-api/internal/service"
	"go-notes-api/internal/transport/http/handler"
)

type env struct {
	r       *gin.Engine
	jwter   *auth.JWTer
	userSvc *service.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "notes-test", TTL: time.Hour}
	userRepo := repo.NewUserRepo(db)
	noteRepo := repo.NewNoteRepo(db)
	userSvc := service.NewUserService(userRepo, jwter, log)
	noteSvc := service.NewNoteService(noteRepo, userRepo, log)
	googleSvc := service.NewGoogleOAuth(config.Google{}, userRepo, jwter, cache.NewMemory(), log)

	r := NewAPIEngine(log, jwter, Handlers{
		User:  handler.NewUserHandler(userSvc),
		Note:  handler.NewNoteHandler(noteSvc),
		OAuth: handler.NewOAuthHandler(googleSvc, "/main", "/login", log),
	})
	return &env{r: r, jwter: jwter, userSvc: userSvc}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var ev envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &ev)
	}
	return w, ev
}

func (e *env) register(t *testing.T, name, email, password string) string {
	t.Helper()
	w, ev := e.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var u domain.PublicUser
	require.NoError(t, json.Unmarshal(ev.Data, &u))
	return u.ID
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	w, ev := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(ev.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// Full walk through the note lifecycle, mirroring the documented
// scenario: register, login, create, anonymous vs owner listing, a
// foreign update attempt, delete, delete again.
func TestNoteLifecycleScenario(t *testing.T) {
	e := newEnv(t)

	annID := e.register(t, "Ann", "ann@x.com", "secret1")
	annTok := e.login(t, "ann@x.com", "secret1")
	e.register(t, "Bob", "bob@x.com", "secret1")
	bobTok := e.login(t, "bob@x.com", "secret1")

	// create
	w, ev := e.do(t, http.MethodPost, "/api/v1/notes", annTok, gin.H{"title": "Hi", "content": "World"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Note
	require.NoError(t, json.Unmarshal(ev.Data, &created))
	assert.Equal(t, annID, created.OwnerID)

	// anonymous list: visible, not editable
	w, ev = e.do(t, http.MethodGet, "/api/v1/notes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []service.NoteView
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	require.Len(t, views, 1)
	assert.False(t, views[0].CanEdit)
	assert.Equal(t, "Ann", views[0].Owner.Name)

	// owner list: editable
	w, ev = e.do(t, http.MethodGet, "/api/v1/notes", annTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	require.Len(t, views, 1)
	assert.True(t, views[0].CanEdit)

	// foreign update: forbidden
	w, _ = e.do(t, http.MethodPut, "/api/v1/notes/"+created.ID, bobTok, gin.H{"title": "X", "content": "Y"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// delete, then delete again
	w, _ = e.do(t, http.MethodDelete, "/api/v1/notes/"+created.ID, annTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = e.do(t, http.MethodDelete, "/api/v1/notes/"+created.ID, annTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoteRoutesRequireAuth(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, http.MethodPost, "/api/v1/notes", "", gin.H{"title": "Hi", "content": "World"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(t, http.MethodPut, "/api/v1/notes/some-id", "", gin.H{"title": "Hi", "content": "World"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(t, http.MethodDelete, "/api/v1/notes/some-id", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNoteCreateValidationOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ann", "ann@x.com", "secret1")
	tok := e.login(t, "ann@x.com", "secret1")

	w, _ := e.do(t, http.MethodPost, "/api/v1/notes", tok, gin.H{"title": "", "content": "World"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/notes", tok, gin.H{"title": "Hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestCannotCreateNotes(t *testing.T) {
	e := newEnv(t)

	guestTok, err := e.jwter.Issue("guest-1", "guest@x.com", domain.RoleGuest)
	require.NoError(t, err)

	w, _ := e.do(t, http.MethodPost, "/api/v1/notes", guestTok, gin.H{"title": "Hi", "content": "World"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// reading stays open to guests
	w, _ = e.do(t, http.MethodGet, "/api/v1/notes", guestTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNoteListFiltersOverHTTP(t *testing.T) {
	e := newEnv(t)

	annID := e.register(t, "Ann Smith", "ann@x.com", "secret1")
	annTok := e.login(t, "ann@x.com", "secret1")
	e.register(t, "Bob", "bob@x.com", "secret1")
	bobTok := e.login(t, "bob@x.com", "secret1")

	w, _ := e.do(t, http.MethodPost, "/api/v1/notes", annTok, gin.H{"title": "Grocery Run", "content": "milk"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = e.do(t, http.MethodPost, "/api/v1/notes", bobTok, gin.H{"title": "Standup", "content": "notes"})
	require.Equal(t, http.StatusCreated, w.Code)

	var views []service.NoteView

	w, ev := e.do(t, http.MethodGet, "/api/v1/notes?title=grocery", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Grocery Run", views[0].Title)

	w, ev = e.do(t, http.MethodGet, "/api/v1/notes?author=smith", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Grocery Run", views[0].Title)

	w, ev = e.do(t, http.MethodGet, "/api/v1/notes?owner="+annID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	require.Len(t, views, 1)

	w, ev = e.do(t, http.MethodGet, "/api/v1/notes?author=nobody", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(ev.Data, &views))
	assert.Empty(t, views)
}

func TestUserAdminRoutes(t *testing.T) {
	e := newEnv(t)

	e.register(t, "Ann", "ann@x.com", "secret1")
	annTok := e.login(t, "ann@x.com", "secret1")

	// bootstrap an admin the way cmd/admin does
	_, err := e.userSvc.AdminCreate(context.Background(), service.AdminCreateInput{
		Name: "Root", Email: "root@x.com", Password: "secret1", Role: "Admin",
	})
	require.NoError(t, err)
	rootTok := e.login(t, "root@x.com", "secret1")

	// listing users is admin-only
	w, _ := e.do(t, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = e.do(t, http.MethodGet, "/api/v1/users", annTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, ev := e.do(t, http.MethodGet, "/api/v1/users", rootTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []domain.PublicUser
	require.NoError(t, json.Unmarshal(ev.Data, &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, string(ev.Data), "passwordHash")

	// admin-created user with explicit role
	w, ev = e.do(t, http.MethodPost, "/api/v1/users", rootTok, gin.H{
		"name": "Carol", "email": "carol@x.com", "password": "secret1", "role": "Guest",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var carol domain.PublicUser
	require.NoError(t, json.Unmarshal(ev.Data, &carol))
	assert.Equal(t, domain.RoleGuest, carol.Role)

	// delete is admin-only
	w, _ = e.do(t, http.MethodDelete, "/api/v1/users/"+carol.ID, annTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = e.do(t, http.MethodDelete, "/api/v1/users/"+carol.ID, rootTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRejectsDuplicateAndBadInput(t *testing.T) {
	e := newEnv(t)

	e.register(t, "Ann", "ann@x.com", "secret1")

	w, _ := e.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"name": "Other", "email": "ann@x.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"name": "NoMail", "email": "not-an-email", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"name": "Short", "email": "s@x.com", "password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ann", "ann@x.com", "secret1")

	w, ev := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "ann@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w2, ev2 := e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "nobody@x.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, w2.Code)
	// no account enumeration: identical message either way
	assert.Equal(t, ev.Msg, ev2.Msg)
}

func TestUserSelfUpdateOverHTTP(t *testing.T) {
	e := newEnv(t)

	annID := e.register(t, "Ann", "ann@x.com", "secret1")
	annTok := e.login(t, "ann@x.com", "secret1")
	e.register(t, "Bob", "bob@x.com", "secret1")
	bobTok := e.login(t, "bob@x.com", "secret1")

	w, ev := e.do(t, http.MethodPut, "/api/v1/users/"+annID, annTok, gin.H{
		"name": "Ann Prime", "role": "Admin",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var u domain.PublicUser
	require.NoError(t, json.Unmarshal(ev.Data, &u))
	assert.Equal(t, "Ann Prime", u.Name)
	// non-admin role escalation dropped silently
	assert.Equal(t, domain.RoleUser, u.Role)

	w, _ = e.do(t, http.MethodPut, "/api/v1/users/"+annID, bobTok, gin.H{"name": "Hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the omitempty tag lets an explicit "" through binding; the service
	// must still refuse to blank the address
	w, _ = e.do(t, http.MethodPut, "/api/v1/users/"+annID, annTok, gin.H{"email": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	tok := e.login(t, "ann@x.com", "secret1")
	assert.NotEmpty(t, tok)
}

func TestOAuthNotConfigured(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, http.MethodGet, "/auth/google", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w, _ = e.do(t, http.MethodGet, "/auth/google/callback?state=s&code=c", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "notes_http_requests_total")
}
