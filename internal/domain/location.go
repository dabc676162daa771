package domain

import "time"

// LocationLevel names one tier of the facility hierarchy, from building
// down to the concrete element a ticket is filed against.
type LocationLevel string

const (
	LevelBuilding LocationLevel = "BUILDING"
	LevelFloor    LocationLevel = "FLOOR"
	LevelRoom     LocationLevel = "ROOM"
	LevelArea     LocationLevel = "AREA"
	LevelElement  LocationLevel = "ELEMENT"
)

// HierarchyLevels returns all levels in top-down order.
func HierarchyLevels() []LocationLevel {
	return []LocationLevel{LevelBuilding, LevelFloor, LevelRoom, LevelArea, LevelElement}
}

// ValidLocationLevel reports whether the value is a known level.
func ValidLocationLevel(level LocationLevel) bool {
	switch level {
	case LevelBuilding, LevelFloor, LevelRoom, LevelArea, LevelElement:
		return true
	}
	return false
}

// LocationNode is one entry of the facility taxonomy. ParentID is nil for
// buildings only; names are unique among siblings, not globally.
type LocationNode struct {
	ID        int64
	Level     LocationLevel
	ParentID  *int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketLocation is the fully resolved five-level chain denormalized onto
// a ticket. Names are captured at resolution time so listings do not need
// joins against the taxonomy.
type TicketLocation struct {
	BuildingID int64
	FloorID    int64
	RoomID     int64
	AreaID     int64
	ElementID  int64

	BuildingName string
	FloorName    string
	RoomName     string
	AreaName     string
	ElementName  string
}
