package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// getClientIP keys rate limiting. Forwarded headers count only when the
// immediate peer is one of the engine's trusted proxies.
func getClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
