package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"powerwrite-backend/internal/shared"
	"powerwrite-backend/pkg/jwt"
)

// ActorKey is the gin context key holding the resolved shared.Actor.
const ActorKey = "actor"

// ActorResolver looks up acting users. Implemented by the user service.
type ActorResolver interface {
	// ResolveActor returns the actor for an authenticated user ID.
	ResolveActor(ctx context.Context, userID string) (shared.Actor, error)
	// DemoActor returns the shared demo account actor.
	DemoActor(ctx context.Context) (shared.Actor, error)
}

// Actor resolves the acting user for every request. A valid Bearer
// token yields the real user; anything else falls back to the demo
// account so unauthenticated visitors can exercise the product.
func Actor(manager *jwt.Manager, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, manager); ok {
			actor, err := resolver.ResolveActor(c.Request.Context(), claims.UserID)
			if err == nil {
				c.Set(ActorKey, actor)
				c.Next()
				return
			}
		}

		demo, err := resolver.DemoActor(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "demo account unavailable"})
			c.Abort()
			return
		}
		c.Set(ActorKey, demo)
		c.Next()
	}
}

// RequireAuth rejects requests whose actor is not a real
// authenticated user. Job endpoints answer 401 without credentials.
func RequireAuth(manager *jwt.Manager, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, manager)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid authorization header"})
			c.Abort()
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			c.Abort()
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// CurrentActor reads the resolved actor from the gin context.
func CurrentActor(c *gin.Context) (shared.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return shared.Actor{}, false
	}
	actor, ok := v.(shared.Actor)
	return actor, ok
}

func bearerClaims(c *gin.Context, manager *jwt.Manager) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := manager.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
