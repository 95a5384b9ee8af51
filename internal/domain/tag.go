package domain

// Tag represents a content category that can be linked to images.
// Tags flagged NSFW pull every image linked to them into NSFW territory
// for filtering purposes, regardless of the image's own flag.
type Tag struct {
	ID          int64  `json:"tag_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsNSFW      bool   `json:"is_nsfw"`
}

// TagCatalog groups tags by their NSFW flag for the public listing.
type TagCatalog struct {
	Versatile []string `json:"versatile"`
	NSFW      []string `json:"nsfw"`
}
