package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw, _ := session.Get(constants.ContextKeyUserID).(string)

		userID, err := uuid.Parse(raw)
		if err != nil {
			apierrors.Unauthorized(c, "")
			return
		}

		refreshSession(session)

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// refreshSession re-saves the session once it is older than the refresh
// interval, which extends the cookie's MaxAge.
func refreshSession(session sessions.Session) {
	last, _ := session.Get(constants.SessionKeyRefreshedAt).(int64)
	now := time.Now()
	if now.Sub(time.Unix(last, 0)) < constants.SessionRefreshInterval {
		return
	}

	session.Set(constants.SessionKeyRefreshedAt, now.Unix())
	if err := session.Save(); err != nil {
		slog.Warn("failed to refresh session", "error", err)
	}
}

// StartSession stores the account in a fresh session
func StartSession(c *gin.Context, accountID uuid.UUID) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, accountID.String())
	session.Set(constants.SessionKeyRefreshedAt, time.Now().Unix())
	return session.Save()
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// LoadProfile resolves the profile of the authenticated account, creating a
// default one when it is missing. Must run after RequireAuth.
func LoadProfile(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		profile, err := authService.ResolveProfile(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				// The account behind the session was deleted.
				sessions.Default(c).Clear()
				_ = sessions.Default(c).Save()
				apierrors.Unauthorized(c, "")
				return
			}
			slog.Error("failed to load profile", "user_id", userID, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyProfile, profile)
		c.Next()
	}
}

// CurrentProfile returns the profile stored by LoadProfile
func CurrentProfile(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(constants.ContextKeyProfile)
	if !exists {
		return nil, false
	}
	profile, ok := v.(*models.Profile)
	return profile, ok && profile != nil
}

// RequireRole allows only profiles whose role satisfies allowed.
func RequireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := CurrentProfile(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}
		if !allowed(profile.Role) {
			apierrors.Forbidden(c, "Insufficient role")
			return
		}
		c.Next()
	}
}
