package service

import (
	"context"

	"github.com/driftpix/driftpix-server/internal/domain"
	apperrors "github.com/driftpix/driftpix-server/internal/errors"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/store"
)

// ReportService records image reports for moderator review.
type ReportService struct {
	store  store.ReportStore
	logger *logger.Logger
}

// NewReportService creates a new report service.
func NewReportService(reports store.ReportStore, log *logger.Logger) *ReportService {
	return &ReportService{store: reports, logger: log}
}

// Report flags an image. Re-reporting an already flagged image returns
// the existing record with Existed set instead of failing.
func (s *ReportService) Report(ctx context.Context, authorID, imageID int64, description string) (domain.Report, error) {
	if imageID <= 0 {
		return domain.Report{}, apperrors.Validation("image_id must be positive")
	}
	if len(description) > 512 {
		return domain.Report{}, apperrors.Validation("description must not exceed 512 characters")
	}

	report, err := s.store.InsertReport(ctx, authorID, imageID, description)
	if err != nil {
		return domain.Report{}, err
	}

	if !report.Existed {
		s.logger.Info("image reported", "image_id", imageID, "author_id", authorID)
	}
	return report, nil
}
