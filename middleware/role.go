package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homeserve/utils"
)

// RequireRole admits only actors holding one of roles. It must run after
// ActorMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			utils.JSONError(c, http.StatusForbidden, "Insufficient role", "role "+actor.Role+" may not access this resource")
			return
		}
		c.Next()
	}
}
