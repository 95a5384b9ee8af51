// Package edge manages the network deny list consumed by the fronting
// proxy. Abusive clients get appended to a deny file in the proxy's
// config format, followed by a reload so the ban takes effect before the
// application sees another request from them.
package edge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/driftpix/driftpix-server/internal/logger"
)

// Reloader tells the fronting proxy to re-read its configuration.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ExecReloader runs a shell command, e.g. "nginx -s reload".
type ExecReloader struct {
	Command string
}

// Reload runs the configured command.
func (r ExecReloader) Reload(ctx context.Context) error {
	if r.Command == "" {
		return nil
	}
	out, err := exec.CommandContext(ctx, "sh", "-c", r.Command).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reload command %q: %w: %s", r.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NoopReloader skips the reload step. Used when no reload command is
// configured and in tests.
type NoopReloader struct{}

// Reload does nothing.
func (NoopReloader) Reload(context.Context) error { return nil }

// DenyList appends banned client addresses to the proxy deny file.
// Writes are serialized and idempotent per address.
type DenyList struct {
	path     string
	reloader Reloader
	logger   *logger.Logger

	mu sync.Mutex
}

// New creates a deny list writer for the given file. An empty path
// disables the writer entirely.
func New(path string, reloader Reloader, log *logger.Logger) *DenyList {
	if reloader == nil {
		reloader = NoopReloader{}
	}
	return &DenyList{path: path, reloader: reloader, logger: log}
}

// Escalate bans the client address. Errors are logged, not returned;
// escalation runs detached from any request.
func (d *DenyList) Escalate(ctx context.Context, clientIP, reason string) {
	added, err := d.Add(ctx, clientIP, reason)
	if err != nil {
		d.logger.WithError(err).Error("failed to deny-list client", "client_ip", clientIP)
		return
	}
	if added {
		d.logger.Warn("client added to deny list", "client_ip", clientIP, "reason", reason)
	}
}

// Add appends a deny entry for the address unless one already exists,
// then triggers a proxy reload. Reports whether a new entry was written.
func (d *DenyList) Add(ctx context.Context, ip, reason string) (bool, error) {
	if d.path == "" {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read deny list: %w", err)
	}

	entry := "deny " + ip + ";"
	for line := range strings.Lines(string(data)) {
		if strings.HasPrefix(strings.TrimSpace(line), entry) {
			return false, nil
		}
	}

	line := entry
	if reason != "" {
		line += "#" + reason
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"

	if err := os.WriteFile(d.path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write deny list: %w", err)
	}

	if err := d.reloader.Reload(ctx); err != nil {
		return true, err
	}
	return true, nil
}
