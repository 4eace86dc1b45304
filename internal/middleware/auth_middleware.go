package middleware

import (
	"net/http"
	"strings"

	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ContextUserID    = "user_id"
	ContextUserType  = "user_type"
	ContextEmail     = "email"
	ContextRequestID = "request_id"
)

// AuthRequired validates the JWT and stores the caller in the context.
// Browsers cannot set headers on a websocket upgrade, so a token query
// parameter is accepted as well.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret)
		if err != nil || claims.UserID.IsZero() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserType, claims.UserType)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// GuestRequired bars hosts. The flag is read from storage because a token
// issued before the user's first listing still says guest.
func GuestRequired(userRepo interfaces.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			utils.HandleError(c, err)
			c.Abort()
			return
		}
		if user.IsHost {
			utils.ErrorResponse(c, http.StatusForbidden, string(utils.KindForbidden), "hosts cannot make reservations")
			c.Abort()
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated caller set by AuthRequired.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}
