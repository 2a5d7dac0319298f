package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/kanban"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// respondError maps service sentinels onto API errors. Anything unknown is a
// store failure: it is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	switch {
	// 400
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidInviteToken),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidDepartment),
		errors.Is(err, services.ErrClientNameRequired),
		errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidProjectType),
		errors.Is(err, services.ErrInvalidProjectStatus),
		errors.Is(err, services.ErrInvalidProgress),
		errors.Is(err, services.ErrInvalidClient),
		errors.Is(err, services.ErrInvalidProjectRole),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority),
		errors.Is(err, services.ErrInvalidTaskAssignee),
		errors.Is(err, services.ErrTooManyTags),
		errors.Is(err, services.ErrTaskNotInProject),
		errors.Is(err, services.ErrCannotDeleteSelf),
		errors.Is(err, kanban.ErrUnknownStatus),
		errors.Is(err, kanban.ErrTaskNotOnBoard):
		apierrors.BadRequest(c, err.Error())

	// 401
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())

	// 403
	case errors.Is(err, services.ErrCannotManageUser),
		errors.Is(err, services.ErrCannotAssignRole),
		errors.Is(err, services.ErrProjectPermissionDenied):
		apierrors.Forbidden(c, err.Error())

	// 404
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectMemberNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrTimeEntryNotFound):
		apierrors.NotFound(c, err.Error())

	// 409
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.AlreadyExists(c, err.Error())
	case errors.Is(err, services.ErrClientInUse),
		errors.Is(err, services.ErrUserInUse),
		errors.Is(err, services.ErrInviteAlreadyUsed),
		errors.Is(err, services.ErrTaskMoveConflict),
		errors.Is(err, services.ErrActiveEntryExists),
		errors.Is(err, services.ErrEntryNotActive),
		errors.Is(err, kanban.ErrAlreadyDragging),
		errors.Is(err, kanban.ErrNotDragging):
		apierrors.Conflict(c, err.Error())

	// unusable AI output
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())

	// 503
	case errors.Is(err, services.ErrAIServiceNotConfigured),
		errors.Is(err, services.ErrInviteNotAvailable):
		apierrors.ServiceUnavailable(c, err.Error())

	default:
		slog.Error("request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err,
		)
		apierrors.InternalError(c, "")
	}
}
