package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/studio-manager-api/internal/dto"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/middleware"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

type TaskHandler struct {
	taskService    *services.TaskService
	projectService *services.ProjectService
}

func NewTaskHandler(taskService *services.TaskService, projectService *services.ProjectService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		projectService: projectService,
	}
}

// taskRequest is shared by create and update. For assignee_id and due_date an
// empty string clears the value.
type taskRequest struct {
	ProjectID   string    `json:"project_id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	DueDate     *string   `json:"due_date"`
	AssigneeID  *string   `json:"assignee_id"`
	Tags        *[]string `json:"tags"`
}

func bindTaskInput(c *gin.Context) (services.TaskInput, taskRequest, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.TaskInput{}, req, false
	}

	input := services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
		input.SetTags = true
	}

	var ok bool
	if input.DueDate, input.ClearDueDate, ok = optionalDate(c, req.DueDate, "due_date"); !ok {
		return services.TaskInput{}, req, false
	}
	if input.AssigneeID, input.ClearAssignee, ok = optionalUUID(c, req.AssigneeID, "assignee_id"); !ok {
		return services.TaskInput{}, req, false
	}

	return input, req, true
}

// ListTasks returns tasks ordered by position. Supports ?project_id=,
// ?status= and ?assignee_id=.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	var input services.ListTasksInput
	if input.ProjectID, ok = uuidQuery(c, "project_id"); !ok {
		return
	}
	if input.AssigneeID, ok = uuidQuery(c, "assignee_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, ok := models.ParseTaskStatus(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task at the end of its project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	input, req, ok := bindTaskInput(c)
	if !ok {
		return
	}
	projectID, isClear, ok := optionalUUID(c, &req.ProjectID, "project_id")
	if !ok {
		return
	}
	if isClear {
		apierrors.BadRequest(c, "project_id is required")
		return
	}
	input.ProjectID = *projectID

	task, err := h.taskService.CreateTask(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	input, _, ok := bindTaskInput(c)
	if !ok {
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// UpdateStatus moves a task to another kanban bucket
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	status, ok := models.ParseTaskStatus(req.Status)
	if !ok {
		apierrors.BadRequest(c, "Invalid status")
		return
	}

	updated, err := h.taskService.SetStatus(c.Request.Context(), task.ID, status, services.MoveSourceMenu)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateTasks generates task suggestions for a project from text using AI.
// Nothing is saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	generated, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		ProjectName: project.Name,
		Text:        req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToGeneratedTaskDTOs(generated),
	})
}
