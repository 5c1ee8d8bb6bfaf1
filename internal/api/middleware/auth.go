package middleware

import (
	"net/http"
	"strings"

	"github.com/ahmetkoprulu/rtqb/common/utils"
	"github.com/ahmetkoprulu/rtqb/models"
	"github.com/gin-gonic/gin"
)

const (
	UserIDKey   = "userID"
	PlayerIDKey = "playerID"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := models.ApiResponse[any]{
			Success: false,
			Status:  models.StatusUnauthorized,
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			result.Message = "authorization header is required"
			c.JSON(http.StatusUnauthorized, result)
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			result.Message = "invalid authorization header format"
			c.JSON(http.StatusUnauthorized, result)
			c.Abort()
			return
		}

		token := tokenParts[1]
		claims, err := utils.ValidateJWTTokenWithClaims(token)
		if err != nil {
			result.Message = err.Error()
			c.JSON(http.StatusUnauthorized, result)
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(PlayerIDKey, claims.PlayerID)
		c.Next()
	}
}
