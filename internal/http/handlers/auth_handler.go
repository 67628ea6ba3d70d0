// Session endpoints.
//
//   - POST /login   body {"username","password"} → session cookie
//   - GET  /logout  clears the session
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ileco-one/triage-backend/internal/http/middleware"
	"github.com/ileco-one/triage-backend/internal/services"
)

// LoginRequest is the JSON payload for POST /login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /login. On success a session cookie is set; the
// token itself is also returned for non-browser clients.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password are required")
		return
	}

	if err := h.deps.Auth.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrAccountLocked):
			fail(c, http.StatusUnauthorized, ErrCodeAccountLocked, "account temporarily locked, try again later")
		case errors.Is(err, services.ErrBadCredentials):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid username or password")
		default:
			failService(c, err)
		}
		return
	}

	token := h.deps.Sessions.Mint(req.Username)
	maxAge := int(h.deps.Sessions.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", false, true)
	done(c, gin.H{"token": token, "username": req.Username})
}

// Logout handles GET /logout. Unknown or absent tokens are a no-op; the
// cookie is cleared either way.
func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		h.deps.Sessions.Destroy(token)
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	done(c, nil)
}
