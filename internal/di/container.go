// Package di provides dependency injection configuration for the
// DriftPix server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/driftpix/driftpix-server/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideRecencyQueue)

	// Edge controls
	do.Provide(injector, providers.ProvideDenyList)
	do.Provide(injector, providers.ProvideWindowLimiter)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideIPCClient)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideImageService)
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideReportService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Invoking the HTTP server pulls in
// the rest of the graph and starts listening.
func Bootstrap(injector *do.RootScope) error {
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
