package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/state"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const (
	HeaderSessionID = "X-Session-ID"
	LoginPath       = "/auth/login"

	sessionKey = "session"
)

// SessionMiddleware resolves the X-Session-ID header to a hydrated session store
func SessionMiddleware(manager *state.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if id == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session id"})
			c.Abort()
			return
		}

		store, err := manager.Get(c.Request.Context(), id)
		if err != nil {
			if _, ok := err.(*errors.ErrValidation); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
				c.Abort()
				return
			}
			logger.Error("Failed to load session", zap.String("session_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			c.Abort()
			return
		}

		c.Set(sessionKey, store)
		c.Next()
	}
}

// RequireAuth rejects anonymous sessions with the login redirect
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := GetSessionFromContext(c)
		if !ok || !store.Snapshot().IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "redirect": LoginPath})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionFromContext retrieves the session store set by SessionMiddleware
func GetSessionFromContext(c *gin.Context) (*state.Store, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	store, ok := v.(*state.Store)
	return store, ok
}

// ClientFor returns a shop API client carrying the session token. A 401 from
// any call made with it clears the session's auth.
func ClientFor(store *state.Store, base *backend.Client, logger *zap.Logger) *backend.Client {
	return ClientWithToken(store, base, store.Token(), logger)
}

// ClientWithToken is ClientFor with an explicit token, for calls made right after login
func ClientWithToken(store *state.Store, base *backend.Client, token string, logger *zap.Logger) *backend.Client {
	return base.WithToken(token, func() {
		if err := store.ClearAuth(context.Background()); err != nil {
			logger.Warn("Failed to clear auth after 401", zap.String("session_id", store.ID()), zap.Error(err))
		}
	}).WithShopSession(store.ShopSession(), shopSessionRecorder(store, logger))
}

// GuestClient returns a client without a token that still carries the shop
// session, so a login made with it keeps the guest cart reachable.
func GuestClient(store *state.Store, base *backend.Client, logger *zap.Logger) *backend.Client {
	return base.WithToken("", nil).WithShopSession(store.ShopSession(), shopSessionRecorder(store, logger))
}

func shopSessionRecorder(store *state.Store, logger *zap.Logger) func(string) {
	return func(id string) {
		if err := store.SetShopSession(context.Background(), id); err != nil {
			logger.Warn("Failed to store shop session", zap.String("session_id", store.ID()), zap.Error(err))
		}
	}
}
