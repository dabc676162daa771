package domain

import "time"

// Department is an organizational unit used to scope manager visibility.
type Department struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
