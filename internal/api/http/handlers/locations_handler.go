package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitydesk/helpdesk-service/internal/api/dto"
	"github.com/facilitydesk/helpdesk-service/internal/domain"
	"github.com/facilitydesk/helpdesk-service/internal/service"
	apperrors "github.com/facilitydesk/helpdesk-service/pkg/util"
)

// LocationsHandler feeds the cascading location dropdowns.
type LocationsHandler struct {
	service *service.LocationService
}

// NewLocationsHandler constructs handler.
func NewLocationsHandler(locationService *service.LocationService) *LocationsHandler {
	return &LocationsHandler{service: locationService}
}

// Children GET /locations/children?level=floor&parent_id=3.
func (h *LocationsHandler) Children(c *fiber.Ctx) error {
	level := domain.LocationLevel(strings.ToUpper(strings.TrimSpace(c.Query("level"))))
	if level == "" {
		return apperrors.NewValidationError("level required", nil)
	}

	var parentID *int64
	if raw := c.Query("parent_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("invalid parent_id", map[string]any{"parent_id": raw})
		}
		parentID = &parsed
	}

	nodes, err := h.service.Children(c.Context(), level, parentID)
	if err != nil {
		return err
	}
	items := make([]dto.LocationNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, dto.LocationNodeResponse{
			ID:       node.ID,
			Level:    node.Level,
			ParentID: node.ParentID,
			Name:     node.Name,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
