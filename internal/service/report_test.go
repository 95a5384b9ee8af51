package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/driftpix/driftpix-server/internal/errors"
)

func TestReport(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	env.seedUser(t, 1, "alice", "s")
	img := env.seedImage(t, "a", false, "maid")
	svc := NewReportService(env.store, env.logger)

	report, err := svc.Report(ctx, 1, img, "mistagged")
	require.NoError(t, err)
	assert.False(t, report.Existed)

	report, err = svc.Report(ctx, 1, img, "again")
	require.NoError(t, err)
	assert.True(t, report.Existed)
}

func TestReport_Validation(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	svc := NewReportService(env.store, env.logger)

	_, err := svc.Report(ctx, 1, 0, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Report(ctx, 1, 7, strings.Repeat("x", 513))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReport_UnknownImage(t *testing.T) {
	env := newTestEnv(t, 10)
	env.seedUser(t, 1, "alice", "s")
	svc := NewReportService(env.store, env.logger)

	_, err := svc.Report(context.Background(), 1, 999, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
