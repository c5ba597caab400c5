package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course_miniapp/middleware"
	"course_miniapp/models"
	"course_miniapp/store"
)

type SessionHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewSessionHandler(s *store.Store, log logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{store: s, log: log}
}

// SessionInfo describes the current session without exposing the token.
type SessionInfo struct {
	Authenticated bool           `json:"authenticated"`
	Token         string         `json:"token"`
	UseMocks      bool           `json:"use_mocks"`
	Claims        *models.Claims `json:"claims,omitempty"`
}

func (h *SessionHandler) Get(c *gin.Context) {
	h.render(c)
}

func (h *SessionHandler) DevLogin(c *gin.Context) {
	h.store.DevLogin(c.Request.Context())
	h.render(c)
}

// TelegramAuth takes init data from the JSON body, then from whatever the
// webview forwarded, then from the configured providers.
func (h *SessionHandler) TelegramAuth(c *gin.Context) {
	var req models.TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.WithError(err).Debug("ignoring malformed telegram auth body")
	}
	initData := req.InitData
	if initData == "" {
		initData = middleware.InitData(c)
	}
	h.store.TelegramAuth(c.Request.Context(), initData)
	h.render(c)
}

func (h *SessionHandler) Logout(c *gin.Context) {
	h.store.ClearAuth()
	h.render(c)
}

func (h *SessionHandler) render(c *gin.Context) {
	render(c, h.store, "session", nil, NewSessionInfo(h.store))
}

// NewSessionInfo summarizes the store's session. Claims are left out when
// the token is not a JWT.
func NewSessionInfo(s *store.Store) SessionInfo {
	info := SessionInfo{
		Authenticated: s.Snapshot().Authenticated(),
		Token:         s.TokenPreview(),
		UseMocks:      s.UseMocks(),
	}
	if claims, err := s.TokenClaims(); err == nil {
		info.Claims = claims
	}
	return info
}
