package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-notes-api/internal/domain"
	"go-notes-api/internal/service"
	httpez "go-notes-api/internal/transport/http/ez"
)

// OAuthHandler wires the Google delegation flow. Both routes exist
// whether or not credentials are configured; the service answers
// NotConfigured when they are absent.
type OAuthHandler struct {
	svc             *service.GoogleOAuth
	successRedirect string
	failureRedirect string
	log             *zap.Logger
}

func NewOAuthHandler(svc *service.GoogleOAuth, successRedirect, failureRedirect string, log *zap.Logger) *OAuthHandler {
	return &OAuthHandler{svc: svc, successRedirect: successRedirect, failureRedirect: failureRedirect, log: log}
}

func (h *OAuthHandler) Mount(r *gin.Engine) {
	r.GET("/auth/google", h.begin)
	r.GET("/auth/google/callback", h.callback)
}

func (h *OAuthHandler) begin(c *gin.Context) {
	target, err := h.svc.AuthURL(c.Request.Context())
	if err != nil {
		httpez.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// callback never renders an error page: a failed handshake sends the
// client back to the login entry point without a token.
func (h *OAuthHandler) callback(c *gin.Context) {
	if !h.svc.Enabled() {
		httpez.Fail(c, domain.NotConfigured("google oauth is not configured"))
		return
	}
	token, err := h.svc.HandleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		h.log.Warn("google callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.failureRedirect)
		return
	}
	c.Redirect(http.StatusFound, h.successRedirect+"?token="+url.QueryEscape(token))
}
