package dashboard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guildhub/internal/apperr"
)

func (s *Server) login(c *gin.Context) {
	state, err := s.sessions.NewState()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, s.OAuth.AuthCodeURL(state))
}

func (s *Server) callback(c *gin.Context) {
	if !s.sessions.ConsumeState(c.Query("state")) {
		s.fail(c, apperr.Validation(apperr.CodeInvalidField, "state", "unknown or expired login state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		s.fail(c, apperr.Validation(apperr.CodeMissingRequiredField, "code", "no authorization code received"))
		return
	}

	token, user, err := s.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		s.fail(c, apperr.Upstream(apperr.CodeIdentityLookupFailed, "login with Discord failed", err))
		return
	}
	sess, err := s.sessions.Create(user.ID, user.Username, user.Avatar, token.AccessToken, token.Expiry)
	if err != nil {
		s.fail(c, err)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	s.logger.Info("dashboard login", zap.String("user_id", user.ID))
	c.Redirect(http.StatusFound, s.home())
}

func (s *Server) logout(c *gin.Context) {
	s.dropSession(c)
	c.Redirect(http.StatusFound, s.home())
}

// dropSession forgets the caller's session and expires the cookie.
func (s *Server) dropSession(c *gin.Context) {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		MaxAge:   -1,
	})
}

func (s *Server) home() string {
	if s.cfg.PublicURL == "" {
		return "/"
	}
	return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/"
}

func (s *Server) me(c *gin.Context) {
	sess := currentSession(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       sess.UserID,
		"username": sess.Username,
		"avatar":   sess.Avatar,
		"admin":    s.cfg.IsAdmin(sess.UserID),
	})
}
