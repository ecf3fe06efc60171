package middleware

import (
	"net/http"
	"strings"

	"storefront-core/internal/domain/user"
	"storefront-core/internal/handler/httperr"
	"storefront-core/internal/pkg/errs"
	"storefront-core/internal/usecase"

	"github.com/gin-gonic/gin"
)

const ctxActorKey = "actor"

var (
	errMissingToken   = errs.Define("access token required", errs.ErrUnauthorized)
	errInactive       = errs.Define("account is disabled", errs.ErrForbidden)
	errAdminRequired  = errs.Define("administrator role required", errs.ErrForbidden)
	errActorNotLoaded = errs.New("actor missing from context")
)

type AuthMiddleware struct {
	resolver usecase.ActorResolver
}

func NewAuthMiddleware(resolver usecase.ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth resolves the bearer token to an Actor. Inactive accounts are
// rejected here so handlers only see callers allowed to act.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httperr.AbortWithClassified(c, errMissingToken)
			return
		}

		actor, err := m.resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			httperr.AbortWithClassified(c, err)
			return
		}
		if !actor.IsActive {
			httperr.AbortWithClassified(c, errInactive)
			return
		}

		c.Set(ctxActorKey, actor)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			httperr.AbortWithError(c, http.StatusInternalServerError, errActorNotLoaded, "Internal server error", nil)
			return
		}
		if !actor.IsAdmin() {
			httperr.AbortWithClassified(c, errAdminRequired)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func GetActor(c *gin.Context) (*user.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*user.Actor)
	return actor, ok && actor != nil
}

// SetActor is used by tests that bypass token resolution.
func SetActor(c *gin.Context, actor *user.Actor) {
	c.Set(ctxActorKey, actor)
}
