package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go-food-ordering/database"
	"go-food-ordering/helpers"
	"go-food-ordering/models"

	"github.com/gin-gonic/gin"
)

const (
	Auth0IDKey = "auth0Id"
	UserIDKey  = "uid"
)

type UserFinder interface {
	FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
}

// Authentication verifies the caller's bearer token and stores the identity
// provider subject in the context.
func Authentication(auth helpers.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientToken := bearerToken(c.Request)
		if clientToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}
		subject, err := auth.Authenticate(clientToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set(Auth0IDKey, subject)
		c.Next()
	}
}

// CurrentUser resolves the authenticated subject to a stored user and stores
// its id under UserIDKey. It must run after Authentication.
func CurrentUser(users UserFinder, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		user, err := users.FindByAuth0ID(ctx, c.GetString(Auth0IDKey))
		if errors.Is(err, database.ErrNotFound) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if err != nil {
			helpers.RespondError(c, logger, err)
			return
		}
		c.Set(UserIDKey, user.ID.Hex())
		c.Next()
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.Header.Get("token")
}
