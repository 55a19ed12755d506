package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyewearvn/storefront/internal/api/middleware"
	"github.com/eyewearvn/storefront/internal/backend"
	"github.com/eyewearvn/storefront/internal/service"
	"github.com/eyewearvn/storefront/internal/state"
	"github.com/eyewearvn/storefront/pkg/errors"
)

const (
	msgLoginFailed   = "Đăng nhập thất bại"
	msgSessionFailed = "Không thể lưu phiên làm việc."
)

// LoginRequest represents the login form
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PreferencesRequest updates UI preferences. Absent fields are left unchanged.
type PreferencesRequest struct {
	Theme          *state.Theme `json:"theme,omitempty"`
	EffectsEnabled *bool        `json:"effects_enabled,omitempty"`
}

// RecentlyViewedRequest records a product page visit
type RecentlyViewedRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// SessionResponse is a session id with its current state
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	State     state.Snapshot `json:"state"`
}

func sessionResponse(store *state.Store) SessionResponse {
	return SessionResponse{SessionID: store.ID(), State: store.Snapshot()}
}

func accountClient(store *state.Store, api *backend.Client, logger *zap.Logger) func(string) service.AccountAPI {
	return func(token string) service.AccountAPI {
		return middleware.ClientWithToken(store, api, token, logger)
	}
}

// HandleCreateSession handles POST /v1/session
func HandleCreateSession(manager *state.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := manager.Create(c.Request.Context())
		if err != nil {
			logger.Error("Failed to create session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgSessionFailed})
			return
		}
		c.Header(middleware.HeaderSessionID, store.ID())
		c.JSON(http.StatusCreated, sessionResponse(store))
	}
}

// HandleGetSession handles GET /v1/session. With refresh=true the user
// record is reloaded from the shop API first.
func HandleGetSession(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if c.Query("refresh") == "true" && store.Snapshot().IsAuthenticated() {
			client := middleware.ClientFor(store, api, logger)
			sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
			if _, err := sessions.Refresh(c.Request.Context()); err != nil {
				respondError(c, err, "", logger)
				return
			}
		}
		c.JSON(http.StatusOK, sessionResponse(store))
	}
}

// HandleLogin handles POST /v1/session/login
func HandleLogin(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// The login call itself goes out without a token.
		client := middleware.GuestClient(store, api, logger)
		sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
		user, err := sessions.Login(c.Request.Context(), backend.Credentials{Username: req.Username, Password: req.Password})
		if err != nil {
			if _, unauthorized := err.(*errors.ErrUnauthorized); unauthorized {
				c.JSON(http.StatusUnauthorized, gin.H{"error": errors.UserMessage(err, msgLoginFailed)})
				return
			}
			respondError(c, err, msgLoginFailed, logger)
			return
		}

		logger.Info("Session logged in", zap.String("session_id", store.ID()), zap.Int64("user_id", user.ID))
		c.JSON(http.StatusOK, sessionResponse(store))
	}
}

// HandleLogout handles POST /v1/session/logout
func HandleLogout(api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		client := middleware.ClientFor(store, api, logger)
		sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
		if err := sessions.Logout(c.Request.Context()); err != nil {
			logger.Error("Failed to clear session auth", zap.String("session_id", store.ID()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgSessionFailed})
			return
		}
		c.JSON(http.StatusOK, sessionResponse(store))
	}
}

// HandleEndSession handles DELETE /v1/session. Signed-in sessions are
// logged out first, then all persisted state is dropped.
func HandleEndSession(manager *state.Manager, api *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		client := middleware.ClientFor(store, api, logger)
		sessions := service.NewSessionService(client, accountClient(store, api, logger), store, logger)
		if err := sessions.Logout(c.Request.Context()); err != nil {
			logger.Warn("Failed to clear session auth before ending session", zap.String("session_id", store.ID()), zap.Error(err))
		}
		if err := manager.Forget(c.Request.Context(), store.ID()); err != nil {
			logger.Error("Failed to end session", zap.String("session_id", store.ID()), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgSessionFailed})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// HandleUpdatePreferences handles PUT /v1/session/preferences
func HandleUpdatePreferences(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req PreferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Theme != nil {
			if err := store.SetTheme(c.Request.Context(), *req.Theme); err != nil {
				respondError(c, err, msgSessionFailed, logger)
				return
			}
		}
		if req.EffectsEnabled != nil {
			if err := store.SetEffectsEnabled(c.Request.Context(), *req.EffectsEnabled); err != nil {
				respondError(c, err, msgSessionFailed, logger)
				return
			}
		}
		c.JSON(http.StatusOK, sessionResponse(store))
	}
}

// HandleToggleTheme handles POST /v1/session/theme/toggle
func HandleToggleTheme(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, err := store.ToggleTheme(c.Request.Context()); err != nil {
			respondError(c, err, msgSessionFailed, logger)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(store))
	}
}

// HandleRecentlyViewed handles POST /v1/session/recently-viewed
func HandleRecentlyViewed(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req RecentlyViewedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := store.AddRecentlyViewed(c.Request.Context(), req.ProductID); err != nil {
			respondError(c, err, msgSessionFailed, logger)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recently_viewed": store.Snapshot().RecentlyViewed})
	}
}
