package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskhub/internal/domain"
	resp "taskhub/internal/transport/http/response"
)

const KeyUser = "user"

type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// PrincipalLoader returns (nil, nil) for a user that no longer exists.
type PrincipalLoader interface {
	Principal(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate resolves the Authorization header into the acting user.
// The header carries the raw token; a "Bearer " prefix is accepted too.
func Authenticate(v TokenVerifier, p PrincipalLoader, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token == "" {
			authFailures.WithLabelValues("missing").Inc()
			resp.Abort(c, http.StatusBadRequest, "Token not found")
			return
		}
		uid, err := v.Verify(token)
		if err != nil {
			authFailures.WithLabelValues("invalid").Inc()
			resp.Abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		u, err := p.Principal(c.Request.Context(), uid)
		if err != nil {
			l.Error("load principal", zap.String("rid", RequestIDOf(c)), zap.String("user_id", uid), zap.Error(err))
			resp.Abort(c, http.StatusInternalServerError, "")
			return
		}
		if u == nil {
			authFailures.WithLabelValues("unknown_user").Inc()
			resp.Abort(c, http.StatusUnauthorized, "User not found")
			return
		}
		c.Set(KeyUser, u)
		c.Next()
	}
}

type RoleConfig struct {
	AllowedRoles []domain.Role
}

func Authorize(rc RoleConfig) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(rc.AllowedRoles))
	for _, r := range rc.AllowedRoles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			resp.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if _, ok := allowed[u.Role]; !ok {
			authFailures.WithLabelValues("forbidden").Inc()
			resp.Abort(c, http.StatusForbidden, "Forbidden: You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

// CurrentUser is nil outside Authenticate.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
