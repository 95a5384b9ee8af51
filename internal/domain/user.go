package domain

// Permission names recognized by the authorization layer. Rank positions
// are stored in the database; higher positions satisfy requirements for
// every lower-positioned permission.
const (
	// PermissionAdmin is the top of the hierarchy and satisfies every check.
	PermissionAdmin = "admin"
	// PermissionManageGallery allows acting on another user's gallery.
	PermissionManageGallery = "manage_gallery"
	// PermissionViewGallery allows reading another user's gallery.
	PermissionViewGallery = "view_gallery"
)

// User represents a registered API consumer. The secret is the rotating
// half of the credential pair carried in bearer tokens; rotating it
// invalidates every previously issued token.
type User struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Secret        string `json:"-"`
	IsBlacklisted bool   `json:"is_blacklisted"`
}

// Permission is a named capability with a rank position in the hierarchy.
type Permission struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}
