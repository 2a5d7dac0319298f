package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/constants"
	apierrors "github.com/yukikurage/studio-manager-api/internal/errors"
	"github.com/yukikurage/studio-manager-api/internal/middleware"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

// currentProfile returns the profile loaded by middleware or writes a 401.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return profile, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label)
		return uuid.Nil, false
	}
	return id, true
}

// uuidQuery parses an optional UUID query parameter.
func uuidQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// optionalUUID parses a request field where an empty string means "clear".
// It returns the parsed ID, whether the field asks for clearing, and ok.
func optionalUUID(c *gin.Context, raw *string, name string) (*uuid.UUID, bool, bool) {
	if raw == nil {
		return nil, false, true
	}
	if strings.TrimSpace(*raw) == "" {
		return nil, true, true
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false, false
	}
	return &id, false, true
}

// optionalDate parses an RFC3339 timestamp or a plain YYYY-MM-DD date. An
// empty string means "clear".
func optionalDate(c *gin.Context, raw *string, name string) (*time.Time, bool, bool) {
	if raw == nil {
		return nil, false, true
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, true, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, false, true
		}
	}
	apierrors.BadRequest(c, "Invalid "+name)
	return nil, false, false
}

// pageQuery reads page and limit from the query string. page_size is
// accepted for limit. Invalid values fall back to the first page and the
// default size, oversized limits are capped.
func pageQuery(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	raw := c.Query("limit")
	if raw == "" {
		raw = c.Query("page_size")
	}
	limit, err = strconv.Atoi(raw)
	switch {
	case err != nil || limit < constants.MinPageSize:
		limit = constants.DefaultPageSize
	case limit > constants.MaxPageSize:
		limit = constants.MaxPageSize
	}
	return page, limit
}
