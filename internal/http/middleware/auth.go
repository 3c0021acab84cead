// README: Auth middleware (stub for MVP).
package middleware

import "github.com/gin-gonic/gin"

// [TODO] Implement real auth with the hotel PMS guest tokens. For MVP, this is a no-op.

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}
