package dto

import "github.com/facilitydesk/helpdesk-service/internal/domain"

// LocationNodeResponse is one dropdown option.
type LocationNodeResponse struct {
	ID       int64                `json:"id"`
	Level    domain.LocationLevel `json:"level"`
	ParentID *int64               `json:"parent_id,omitempty"`
	Name     string               `json:"name"`
}
