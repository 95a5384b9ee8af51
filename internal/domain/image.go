package domain

import "time"

// Image represents a catalogued picture with its display metadata and the
// tags linked to it. Tags are loaded alongside the image by the store.
type Image struct {
	ID            int64      `json:"image_id"`
	Signature     string     `json:"signature"`
	Extension     string     `json:"extension"`
	DominantColor string     `json:"dominant_color"`
	Source        string     `json:"source,omitempty"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	LikedAt       *time.Time `json:"liked_at,omitempty"` // Set only on gallery draws
	IsNSFW        bool       `json:"is_nsfw"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	ByteSize      int64      `json:"byte_size"`
	Favorites     int64      `json:"favorites"` // Denormalized count across all users
	Tags          []Tag      `json:"tags"`
}

// File returns the storage file name of the image.
func (i *Image) File(cdnBaseURL string) string {
	return cdnBaseURL + "/" + i.Signature + i.Extension
}

// Orientation reports whether the image is landscape, portrait, or square.
func (i *Image) Orientation() Orientation {
	switch {
	case i.Width > i.Height:
		return OrientationLandscape
	case i.Height > i.Width:
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}

// IsGif reports whether the image is an animated gif.
func (i *Image) IsGif() bool {
	return i.Extension == ".gif"
}
