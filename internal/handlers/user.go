package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/studio-manager-api/internal/dto"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/models"
	"github.com/yukikurage/studio-manager-api/internal/repository"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// parseRole keeps unknown values so the service reports them as invalid.
func parseRole(raw string) models.Role {
	if role, ok := models.ParseRole(raw); ok {
		return role
	}
	return models.Role(raw)
}

func parseDepartment(raw string) models.Department {
	if department, ok := models.ParseDepartment(raw); ok {
		return department
	}
	return models.Department(raw)
}

// ListUsers returns profiles filtered by email search, role and department
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageQuery(c)
	filter := repository.ProfileFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: limit,
	}

	if raw := c.Query("role"); raw != "" && raw != "all" {
		role, ok := models.ParseRole(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid role")
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("department"); raw != "" && raw != "all" {
		department, ok := models.ParseDepartment(raw)
		if !ok {
			apierrors.BadRequest(c, "Invalid department")
			return
		}
		filter.Department = &department
	}

	profiles, total, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(profiles, page, limit, total))
}

// InviteUser creates an account without a password and returns its invite token
func (h *UserHandler) InviteUser(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	type InviteUserRequest struct {
		Email      string `json:"email" binding:"required"`
		Role       string `json:"role"`
		Department string `json:"department"`
	}

	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.InviteUserInput{Email: req.Email}
	if req.Role != "" {
		input.Role = parseRole(req.Role)
	}
	if req.Department != "" {
		input.Department = parseDepartment(req.Department)
	}

	result, err := h.userService.InviteUser(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InviteDTO{
		User:        dto.ToUserDTO(*result.Profile),
		InviteToken: result.Token,
		ExpiresAt:   result.ExpiresAt,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id", "user ID")
	if !ok {
		return
	}

	profile, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*profile))
}

// UpdateUser changes role and department of a profile
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user ID")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Role       *string `json:"role"`
		Department *string `json:"department"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateUserInput
	if req.Role != nil {
		role := parseRole(*req.Role)
		input.Role = &role
	}
	if req.Department != nil {
		department := parseDepartment(*req.Department)
		input.Department = &department
	}

	profile, err := h.userService.UpdateUser(c.Request.Context(), actor, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*profile))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "user ID")
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
