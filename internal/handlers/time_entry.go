package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/studio-manager-api/internal/dto"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/services"
)

type TimeEntryHandler struct {
	timeService *services.TimeService
}

func NewTimeEntryHandler(timeService *services.TimeService) *TimeEntryHandler {
	return &TimeEntryHandler{
		timeService: timeService,
	}
}

// ListEntries returns the current user's entries newest first
func (h *TimeEntryHandler) ListEntries(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	page, limit := pageQuery(c)

	entries, total, err := h.timeService.List(c.Request.Context(), actor.ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryListResponse(entries, page, limit, total))
}

// GetActive returns the running entry, or null when no timer runs
func (h *TimeEntryHandler) GetActive(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	entry, err := h.timeService.Active(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	var body *dto.TimeEntryDTO
	if entry != nil {
		entryDTO := dto.ToTimeEntryDTO(*entry)
		body = &entryDTO
	}
	c.JSON(http.StatusOK, gin.H{"entry": body})
}

// Start begins a timer. A second running timer answers 409.
func (h *TimeEntryHandler) Start(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}

	type StartRequest struct {
		ProjectID   *string `json:"project_id"`
		TaskID      *string `json:"task_id"`
		Description string  `json:"description"`
	}

	var req StartRequest
	// An empty body starts a general timer.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	input := services.StartInput{Description: req.Description}
	if input.ProjectID, _, ok = optionalUUID(c, req.ProjectID, "project_id"); !ok {
		return
	}
	if input.TaskID, _, ok = optionalUUID(c, req.TaskID, "task_id"); !ok {
		return
	}

	entry, err := h.timeService.Start(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

func (h *TimeEntryHandler) Stop(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", "time entry ID")
	if !ok {
		return
	}

	entry, err := h.timeService.Stop(c.Request.Context(), actor.ID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}
