package middleware

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// RequireTaskAccess checks if the user has access to a task
// User must be able to see the task's project
func RequireTaskAccess(taskService *services.TaskService, projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		profile, ok := CurrentProfile(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := taskService.GetTask(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			slog.Error("failed to load task", "task_id", taskID, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		if err := projectService.EnsureAccess(c.Request.Context(), profile, task.ProjectID); err != nil {
			// Return 404 instead of 403 to avoid leaking task existence
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			slog.Error("failed to check task access", "task_id", taskID, "error", err)
			apierrors.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (*models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*models.Task)
	return task, ok && task != nil
}
