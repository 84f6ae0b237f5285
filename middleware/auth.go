package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const userKey = "user"

// UserLoader resolves the account behind a verified access token.
type UserLoader interface {
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
}

// Auth accepts "Authorization: Bearer <jwt>", a bare token in the same
// header, or the accessToken cookie.
func Auth(issuer utils.TokenIssuer, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			utils.Fail(c, utils.NewApiError(http.StatusUnauthorized, "Unauthorized request"))
			return
		}

		claims, err := issuer.ValidateAccessToken(tokenStr)
		if err != nil {
			utils.Fail(c, utils.NewApiError(http.StatusUnauthorized, "Invalid access token"))
			return
		}

		id, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.Fail(c, utils.NewApiError(http.StatusUnauthorized, "Invalid access token"))
			return
		}

		user, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.Fail(c, utils.NewApiError(http.StatusUnauthorized, "Invalid access token"))
				return
			}
			utils.Fail(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	if cookie, err := c.Cookie(utils.AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the user stored by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// SetCurrentUser is used by Auth and by handler tests.
func SetCurrentUser(c *gin.Context, user models.User) {
	c.Set(userKey, user)
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.Fail(c, utils.NewApiError(http.StatusUnauthorized, "Unauthorized request"))
			return
		}
		if !user.IsAdmin() {
			utils.Fail(c, utils.NewApiError(http.StatusForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}
