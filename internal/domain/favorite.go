package domain

import "time"

// Favorite links a user to an image in their gallery.
type Favorite struct {
	UserID  int64     `json:"user_id"`
	ImageID int64     `json:"image_id"`
	LikedAt time.Time `json:"liked_at"`
}

// ToggleState reports the outcome of a toggle mutation on a gallery entry.
type ToggleState string

const (
	// ToggleInserted means the image was added to the gallery.
	ToggleInserted ToggleState = "INSERTED"
	// ToggleDeleted means the image was removed from the gallery.
	ToggleDeleted ToggleState = "DELETED"
)
