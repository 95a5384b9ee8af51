package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/driftpix/driftpix-server/internal/config"
	"github.com/driftpix/driftpix-server/internal/edge"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/ratelimit"
)

// ProvideDenyList provides the network deny list fed by abuse
// escalation. A nil deny list disables escalation.
func ProvideDenyList(i do.Injector) (*edge.DenyList, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var reloader edge.Reloader = edge.NoopReloader{}
	if cfg.Edge.ReloadCommand != "" {
		reloader = edge.ExecReloader{Command: cfg.Edge.ReloadCommand}
	}

	denyList := edge.New(cfg.Edge.DenyListPath, reloader, log)
	if cfg.Edge.DenyListPath == "" {
		log.Info("Deny list disabled, no path configured")
	} else {
		log.Info("Deny list enabled", "path", cfg.Edge.DenyListPath)
	}
	return denyList, nil
}

// ProvideWindowLimiter provides the inbound rate limiter with abuse
// escalation wired to the deny list.
func ProvideWindowLimiter(i do.Injector) (*ratelimit.WindowLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	denyList := do.MustInvoke[*edge.DenyList](i)

	return ratelimit.NewWindow(kvHandle.Store, ratelimit.Config{
		Times:          cfg.RateLimit.Times,
		Window:         time.Duration(cfg.RateLimit.Seconds) * time.Second,
		EscalateAfter:  cfg.RateLimit.EscalateAfter,
		EscalateWindow: time.Duration(cfg.RateLimit.EscalateSeconds) * time.Second,
	}, denyList, log), nil
}
