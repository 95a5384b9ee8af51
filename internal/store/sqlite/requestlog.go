package sqlite

import (
	"context"

	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/store"
)

// LogRequest appends one row to the API access log.
func (s *Store) LogRequest(ctx context.Context, entry store.RequestLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_logs (remote_address, url, user_agent, user_id, version, query_exec_time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.RemoteAddress,
		entry.URL,
		nullString(entry.UserAgent),
		nullInt64(entry.UserID),
		nullString(entry.Version),
		nullInt64(entry.ExecTime.Milliseconds()),
	)
	if err != nil {
		return apperrors.Internal("log request").WithCause(err)
	}
	return nil
}

// CountRequestLogs returns the number of access log rows.
func (s *Store) CountRequestLogs(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_logs`).Scan(&n); err != nil {
		return 0, apperrors.Internal("count request logs").WithCause(err)
	}
	return n, nil
}
