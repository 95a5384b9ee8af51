package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "reportImage",
		Method:      http.MethodPost,
		Path:        "/report",
		Summary:     "Report image",
		Description: "Flags an image for moderator review; reporting an already flagged image returns the existing record",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReportImage)
}

// === DTOs ===

// ReportRequest is the request body for reporting an image.
type ReportRequest struct {
	ImageID     int64  `json:"image_id" validate:"required,gt=0" doc:"Image to report"`
	Description string `json:"description,omitempty" validate:"omitempty,max=512" doc:"Why the image is being reported"`
}

// ReportInput wraps the report request for Huma.
type ReportInput struct {
	Authorization string `header:"Authorization"`
	Body          ReportRequest
}

// ReportResponse contains the stored report.
type ReportResponse struct {
	ImageID     int64     `json:"image_id" doc:"Reported image"`
	AuthorID    int64     `json:"author_id" doc:"Reporting user"`
	Description string    `json:"description,omitempty" doc:"Report description"`
	ReportedAt  time.Time `json:"reported_at" doc:"Time of the first report"`
	Existed     bool      `json:"existed" doc:"Whether the image was already flagged"`
}

// ReportOutput wraps the report response for Huma.
type ReportOutput struct {
	Body ReportResponse
}

// === Handlers ===

func (s *Server) handleReportImage(ctx context.Context, input *ReportInput) (*ReportOutput, error) {
	user, err := s.authorize(ctx, input.Authorization, nil, 0)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&input.Body); err != nil {
		return nil, err
	}

	report, err := s.services.Report.Report(ctx, user.ID, input.Body.ImageID, input.Body.Description)
	if err != nil {
		return nil, err
	}

	return &ReportOutput{
		Body: ReportResponse{
			ImageID:     report.ImageID,
			AuthorID:    report.AuthorID,
			Description: report.Description,
			ReportedAt:  report.ReportedAt,
			Existed:     report.Existed,
		},
	}, nil
}
