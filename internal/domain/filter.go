package domain

import "strings"

// NSFWFilter is the tri-state content rating filter. The zero value
// means "safe only", matching unauthenticated defaults.
type NSFWFilter string

const (
	// NSFWFalse restricts results to safe images with no NSFW tags.
	NSFWFalse NSFWFilter = "false"
	// NSFWTrue restricts results to NSFW images or images with NSFW tags.
	NSFWTrue NSFWFilter = "true"
	// NSFWAny disables rating filtering entirely.
	NSFWAny NSFWFilter = "null"
)

// ParseNSFWFilter normalizes a raw query value into a tri-state filter.
func ParseNSFWFilter(raw string) (NSFWFilter, bool) {
	switch strings.ToLower(raw) {
	case "", "false", "0":
		return NSFWFalse, true
	case "true", "1":
		return NSFWTrue, true
	case "null", "any":
		return NSFWAny, true
	}
	return "", false
}

// GifFilter is the tri-state animation filter.
type GifFilter string

const (
	// GifAny places no constraint on the image format.
	GifAny GifFilter = ""
	// GifOnly restricts results to animated gifs.
	GifOnly GifFilter = "true"
	// GifNone excludes animated gifs.
	GifNone GifFilter = "false"
)

// ParseGifFilter normalizes a raw query value into a tri-state filter.
func ParseGifFilter(raw string) (GifFilter, bool) {
	switch strings.ToLower(raw) {
	case "":
		return GifAny, true
	case "true", "1":
		return GifOnly, true
	case "false", "0":
		return GifNone, true
	}
	return "", false
}

// Orientation constrains the aspect ratio of drawn images.
type Orientation string

const (
	// OrientationAny places no aspect-ratio constraint.
	OrientationAny Orientation = "RANDOM"
	// OrientationLandscape selects images wider than tall.
	OrientationLandscape Orientation = "LANDSCAPE"
	// OrientationPortrait selects images taller than wide.
	OrientationPortrait Orientation = "PORTRAIT"
	// OrientationSquare selects images with equal sides.
	OrientationSquare Orientation = "SQUARE"
)

// Valid reports whether the orientation is a recognized value.
func (o Orientation) Valid() bool {
	switch o {
	case OrientationAny, OrientationLandscape, OrientationPortrait, OrientationSquare:
		return true
	}
	return false
}

// OrderBy selects the ranking applied to drawn images.
type OrderBy string

const (
	// OrderRandom shuffles results; the only ordering that consults the
	// recency queue.
	OrderRandom OrderBy = "RANDOM"
	// OrderFavorites ranks by global favorite count, descending.
	OrderFavorites OrderBy = "FAVORITES"
	// OrderUploadedAt ranks by upload time, newest first.
	OrderUploadedAt OrderBy = "UPLOADED_AT"
	// OrderLikedAt ranks by the time the requesting user favorited the
	// image. Only meaningful on gallery draws.
	OrderLikedAt OrderBy = "LIKED_AT"
)

// Valid reports whether the ordering is recognized. Gallery-only
// orderings still pass here; the service layer rejects LIKED_AT outside
// gallery draws.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderRandom, OrderFavorites, OrderUploadedAt, OrderLikedAt:
		return true
	}
	return false
}
