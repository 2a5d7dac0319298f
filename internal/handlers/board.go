package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	"github.com/yukikurage/studio-manager-api/internal/dto"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/kanban"
	"github.com/yukikurage/studio-manager-api/internal/middleware"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

// BoardHandler serves the kanban board of a project. The drag state of each
// user lives in their session, one entry per project.
type BoardHandler struct {
	taskService *services.TaskService
}

func NewBoardHandler(taskService *services.TaskService) *BoardHandler {
	return &BoardHandler{
		taskService: taskService,
	}
}

func dragKey(projectID uuid.UUID) string {
	return constants.SessionKeyDragPrefix + projectID.String()
}

func loadDrag(c *gin.Context, projectID uuid.UUID) *kanban.Drag {
	snapshot, _ := sessions.Default(c).Get(dragKey(projectID)).(string)
	return kanban.RestoreDrag(snapshot)
}

func saveDrag(c *gin.Context, projectID uuid.UUID, drag *kanban.Drag) error {
	session := sessions.Default(c)
	if snapshot := drag.Snapshot(); snapshot != "" {
		session.Set(dragKey(projectID), snapshot)
	} else {
		session.Delete(dragKey(projectID))
	}
	return session.Save()
}

// GetBoard returns the four buckets of the project with their tasks
func (h *BoardHandler) GetBoard(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	board, err := h.taskService.Board(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"board": dto.ToBoardDTO(board),
		"drag":  dto.ToDragStateDTO(loadDrag(c, projectID)),
	})
}

// StartDrag picks up a task of the board
func (h *BoardHandler) StartDrag(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	type StartDragRequest struct {
		TaskID string `json:"task_id" binding:"required"`
	}

	var req StartDragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task_id")
		return
	}

	board, err := h.taskService.Board(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, found := board.Find(taskID); !found {
		respondError(c, kanban.ErrTaskNotOnBoard)
		return
	}

	drag := loadDrag(c, projectID)
	if err := drag.Start(taskID); err != nil {
		respondError(c, err)
		return
	}
	if err := saveDrag(c, projectID, drag); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToDragStateDTO(drag))
}

// Drop releases the dragged task over a column or another task. The drag
// state is cleared whatever the outcome.
func (h *BoardHandler) Drop(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	type DropRequest struct {
		Over string `json:"over" binding:"required"`
	}

	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	board, err := h.taskService.Board(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	drag := loadDrag(c, projectID)
	cmd, moved, dropErr := drag.Drop(board, req.Over)
	if err := saveDrag(c, projectID, drag); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}
	if dropErr != nil {
		respondError(c, dropErr)
		return
	}

	result := dto.DropResultDTO{Moved: moved, Drag: dto.ToDragStateDTO(drag)}
	if moved {
		if err := h.taskService.Move(c.Request.Context(), projectID, cmd, services.MoveSourceDrag); err != nil {
			respondError(c, err)
			return
		}

		task, err := h.taskService.GetTask(c.Request.Context(), cmd.TaskID)
		if err != nil {
			respondError(c, err)
			return
		}
		taskDTO := dto.ToTaskDTO(*task)
		result.Task = &taskDTO
	}

	c.JSON(http.StatusOK, result)
}

// CancelDrag drops the gesture without moving anything
func (h *BoardHandler) CancelDrag(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	drag := loadDrag(c, projectID)
	drag.Cancel()
	if err := saveDrag(c, projectID, drag); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToDragStateDTO(drag))
}
