package profile

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName = "er-profile"
	ctxKey     = "profile_id"
)

// Middleware resolves the caller's profile from the er-profile cookie and
// mints a new one when the cookie is missing or tampered with. The cookie
// is re-signed on every request, so its expiry slides with use.
func Middleware(tokens TokenService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		var id string
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			if id, err = tokens.Resolve(raw); err != nil {
				logger.Debug("rejecting profile cookie", zap.Error(err))
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		signed, exp, err := tokens.Sign(id)
		if err != nil {
			logger.Error("sign profile", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create profile"})
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, signed, int(time.Until(exp).Seconds()), "/", "", false, true)
		c.Set(ctxKey, id)
		c.Next()
	}
}

// ID returns the profile resolved by Middleware, or "" outside it.
func ID(c *gin.Context) string {
	return c.GetString(ctxKey)
}
