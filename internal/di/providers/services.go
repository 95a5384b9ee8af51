package providers

import (
	"github.com/samber/do/v2"

	"github.com/driftpix/driftpix-server/internal/auth"
	"github.com/driftpix/driftpix-server/internal/config"
	"github.com/driftpix/driftpix-server/internal/ipc"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
	"github.com/driftpix/driftpix-server/internal/recency"
	"github.com/driftpix/driftpix-server/internal/service"
)

// ProvideIPCClient provides the identity-provider bridge. With no base
// URL configured, cross-user gallery management is disabled.
func ProvideIPCClient(i do.Injector) (*ipc.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := ipc.New(cfg.IPC.BaseURL, ratelimit.NewKeyed(ipcRequestsPerSecond, ipcBurst))
	if client.Enabled() {
		log.Info("Identity provider bridge enabled", "base_url", cfg.IPC.BaseURL)
	}
	return client, nil
}

// ProvideAuthService provides token verification and authorization.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	tokens := do.MustInvoke[*auth.TokenService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	idp := do.MustInvoke[*ipc.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(tokens, storeHandle.Store, idp, log), nil
}

// ProvideImageService provides composed image draws.
func ProvideImageService(i do.Injector) (*service.ImageService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	queue := do.MustInvoke[*recency.Queue](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewImageService(storeHandle.Store, queue, cfg.Gallery.BatchLimit, log), nil
}

// ProvideGalleryService provides favorite management.
func ProvideGalleryService(i do.Injector) (*service.GalleryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGalleryService(storeHandle.Store, storeHandle.Store, cfg.Gallery.BatchLimit, log), nil
}

// ProvideTagService provides the tag catalogue.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewTagService(storeHandle.Store), nil
}

// ProvideReportService provides image reporting.
func ProvideReportService(i do.Injector) (*service.ReportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewReportService(storeHandle.Store, log), nil
}
