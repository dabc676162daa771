package domain

import "time"

// Attachment stores an uploaded file against a ticket. Content is held in
// full; uploads are bounded by configuration before they reach this type.
type Attachment struct {
	ID         int64
	TicketID   int64
	FileName   string
	MimeType   string
	SizeBytes  int64
	Content    []byte
	UploaderID *int64
	CreatedAt  time.Time
}
