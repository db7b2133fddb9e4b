package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"go-notes-api/internal/core/auth"
	"go-notes-api/internal/core/cache"
	"go-notes-api/internal/core/config"
	"go-notes-api/internal/domain"
	"go-notes-api/pkg/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleOAuth delegates authentication to Google and exchanges the
// provider confirmation for a locally issued session token. It is
// constructed once at startup; without client credentials it stays in
// a disabled state and every call answers NotConfigured, so the rest
// of the system runs fine without it.
type GoogleOAuth struct {
	oauth       *oauth2.Config // nil when not configured
	users       domain.UserRepository
	jwter       *auth.JWTer
	states      cache.StateStore
	stateTTL    time.Duration
	userInfoURL string
	log         *zap.Logger
}

func NewGoogleOAuth(cfg config.Google, users domain.UserRepository, jwter *auth.JWTer, states cache.StateStore, log *zap.Logger) *GoogleOAuth {
	g := &GoogleOAuth{
		users:       users,
		jwter:       jwter,
		states:      states,
		stateTTL:    time.Duration(cfg.StateTTLMin) * time.Minute,
		userInfoURL: googleUserInfoURL,
		log:         log,
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		log.Warn("google oauth credentials not set, delegated login disabled")
		return g
	}
	g.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "profile", "email"},
	}
	return g
}

func (g *GoogleOAuth) Enabled() bool { return g.oauth != nil }

// AuthURL mints a one-shot state nonce and returns the provider
// redirect target.
func (g *GoogleOAuth) AuthURL(ctx context.Context) (string, error) {
	if g.oauth == nil {
		return "", domain.NotConfigured("google oauth is not configured")
	}
	state := utils.NewID()
	if err := g.states.Put(ctx, state, g.stateTTL); err != nil {
		return "", domain.Internal("store oauth state failed", err)
	}
	return g.oauth.AuthCodeURL(state), nil
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// HandleCallback completes the handshake: validates the state nonce,
// exchanges the code, resolves or creates the local account by the
// provider's stable id, and issues a session token.
func (g *GoogleOAuth) HandleCallback(ctx context.Context, state, code string) (string, error) {
	if g.oauth == nil {
		return "", domain.NotConfigured("google oauth is not configured")
	}
	ok, err := g.states.Take(ctx, state)
	if err != nil {
		return "", domain.Internal("check oauth state failed", err)
	}
	if state == "" || !ok {
		return "", domain.Unauthorized("unknown or expired oauth state")
	}
	if code == "" {
		return "", domain.Unauthorized("missing authorization code")
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return "", domain.Unauthorized("code exchange failed")
	}
	profile, err := g.fetchProfile(ctx, tok)
	if err != nil {
		return "", domain.Internal("fetch google profile failed", err)
	}
	if profile.ID == "" {
		return "", domain.Internal("google profile has no id", nil)
	}

	u, err := g.resolveUser(ctx, profile)
	if err != nil {
		return "", err
	}
	token, err := g.jwter.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", domain.Internal("issue token failed", err)
	}
	return token, nil
}

func (g *GoogleOAuth) fetchProfile(ctx context.Context, tok *oauth2.Token) (*googleProfile, error) {
	resp, err := g.oauth.Client(ctx, tok).Get(g.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (g *GoogleOAuth) resolveUser(ctx context.Context, p *googleProfile) (*domain.User, error) {
	u, err := g.users.FindByGoogleID(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal("lookup user failed", err)
	}
	if u != nil {
		return u, nil
	}

	name := p.Name
	if name == "" {
		name = "Google User"
	}
	gid := p.ID
	u = &domain.User{
		ID:    utils.NewID(),
		Name:  name,
		Email: p.Email,
		// random placeholder: this account authenticates exclusively
		// through Google
		PasswordHash: utils.HashPassword(utils.NewID()),
		Role:         domain.RoleUser,
		GoogleID:     &gid,
	}
	if err := g.users.Create(ctx, u); err != nil {
		return nil, domain.Internal("create user failed", err)
	}
	g.log.Info("user created via google", zap.String("id", u.ID))
	return u, nil
}
