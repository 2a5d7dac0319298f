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

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// projectRequest is shared by create and update. For client_id and due_date
// an empty string clears the value.
type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
	ClientID    *string `json:"client_id"`
	Progress    *int    `json:"progress"`
	DueDate     *string `json:"due_date"`
}

func (h *ProjectHandler) bindProjectInput(c *gin.Context) (services.ProjectInput, bool) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.ProjectInput{}, false
	}

	input := services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Progress:    req.Progress,
	}
	if req.Type != nil {
		projectType := models.ProjectType(*req.Type)
		input.Type = &projectType
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		input.Status = &status
	}

	var ok bool
	if input.ClientID, input.ClearClientID, ok = optionalUUID(c, req.ClientID, "client_id"); !ok {
		return services.ProjectInput{}, false
	}
	if input.DueDate, input.ClearDueDate, ok = optionalDate(c, req.DueDate, "due_date"); !ok {
		return services.ProjectInput{}, false
	}

	return input, true
}

// ListProjects returns the projects visible to the current user. Supports
// ?search= (project or client name), ?type= and ?status=.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	input := services.ListProjectsInput{Search: c.Query("search")}
	if raw := c.Query("type"); raw != "" && raw != "all" {
		projectType, ok := models.ParseProjectType(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid type")
			return
		}
		input.Type = &projectType
	}
	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, ok := models.ParseProjectStatus(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		input.Status = &status
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	input, ok := h.bindProjectInput(c)
	if !ok {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns a project. Access is checked by RequireProjectAccess.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	input, ok := h.bindProjectInput(c)
	if !ok {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	projectID, _ := middleware.GetProjectID(c)

	if err := h.projectService.DeleteProject(c.Request.Context(), actor, projectID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	members, err := h.projectService.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": dto.ToProjectMemberDTOs(members)})
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	projectID, _ := middleware.GetProjectID(c)

	type AddMemberRequest struct {
		UserID string `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	userID, isClear, ok := optionalUUID(c, &req.UserID, "user_id")
	if !ok {
		return
	}
	if isClear {
		apierrors.BadRequest(c, "user_id is required")
		return
	}

	member, err := h.projectService.AddMember(c.Request.Context(), actor, projectID, services.AddMemberInput{
		UserID: *userID,
		Role:   models.ProjectRole(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*member))
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	projectID, _ := middleware.GetProjectID(c)
	userID, ok := uuidParam(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), actor, projectID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
