package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// RequireProjectAccess checks that the current profile may see the project
// named by the :id parameter. Must run after LoadProfile.
func RequireProjectAccess(projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}

		profile, ok := CurrentProfile(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		if err := projectService.EnsureAccess(c.Request.Context(), profile, projectID); err != nil {
			// Return 404 instead of 403 to avoid leaking project existence
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Project not found")
				return
			}
			slog.Error("failed to check project access", "project_id", projectID, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyProject, projectID)
		c.Next()
	}
}

// GetProjectID retrieves the project ID stored by RequireProjectAccess
func GetProjectID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
