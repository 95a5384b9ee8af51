package domain

import "time"

// Report records a user flagging an image for moderator review.
// Reports are idempotent per (author, image) pair; re-reporting returns
// the existing record with Existed set.
type Report struct {
	ImageID     int64     `json:"image_id"`
	AuthorID    int64     `json:"author_id"`
	Description string    `json:"description,omitempty"`
	ReportedAt  time.Time `json:"reported_at"`
	Existed     bool      `json:"existed"`
}
