package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/client"
	"taskhub/internal/domain"
)

const (
	cookieName = "auth_token"
	keySession = "session"
)

// Session is the browser's auth state. The zero value is anonymous.
type Session struct {
	Token string
	User  *domain.User
}

func (s Session) LoggedIn() bool { return s.Token != "" && s.User != nil }

func (s Session) IsAdmin() bool { return s.LoggedIn() && s.User.Role == domain.RoleAdmin }

// loadSession resolves the auth cookie through GET /api/profile. A token the
// API rejects clears the cookie.
func (s *Server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookieName)
		if err != nil || tok == "" {
			c.Set(keySession, Session{})
			c.Next()
			return
		}
		u, err := s.api.Profile(c.Request.Context(), tok)
		var ae *client.APIError
		switch {
		case errors.As(err, &ae):
			s.clearCookie(c)
			c.Set(keySession, Session{})
		case err != nil:
			s.log.Warn("profile lookup failed", zap.Error(err))
			c.Set(keySession, Session{})
		default:
			c.Set(keySession, Session{Token: tok, User: u})
		}
		c.Next()
	}
}

func sessionOf(c *gin.Context) Session {
	v, _ := c.Get(keySession)
	sess, _ := v.(Session)
	return sess
}

func requireLogin(c *gin.Context) {
	if !sessionOf(c).LoggedIn() {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) setCookie(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, tok, int(s.cookieTTL.Seconds()), "/", "", s.cookieSecure, true)
}

func (s *Server) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookieName, "", -1, "/", "", s.cookieSecure, true)
}
