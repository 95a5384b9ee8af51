package api

import "github.com/driftpix/driftpix-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Image   *service.ImageService
	Gallery *service.GalleryService
	Tag     *service.TagService
	Report  *service.ReportService
}
