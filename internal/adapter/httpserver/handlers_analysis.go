package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deliberation-tools/groundwork/internal/app"
	"github.com/deliberation-tools/groundwork/internal/domain"
	apperrors "github.com/deliberation-tools/groundwork/internal/platform/errors"
	"github.com/deliberation-tools/groundwork/internal/stats"
)

func (s *Server) registerAnalysisRoutes() {
	s.echo.POST("/api/v1/analyses", s.handleAnalyzeInline)
	s.echo.POST("/api/v1/conversations/:id/analyses", s.handleAnalyzeConversation)
	s.echo.GET("/api/v1/reports/:id", s.handleGetReport)
}

type analyzeRequest struct {
	Comments []domain.Comment `json:"comments"`
	Strategy string           `json:"strategy,omitempty"`
	Options  *analyzeOptions  `json:"options,omitempty"`
}

// analyzeOptions is the per-request threshold override surface. Zero fields
// keep the service defaults.
type analyzeOptions struct {
	MinVoteCount           int     `json:"min_vote_count,omitempty"`
	MinCommonGroundProb    float64 `json:"min_common_ground_prob,omitempty"`
	MinAgreeProbDifference float64 `json:"min_agree_prob_difference,omitempty"`
	MaxSampleSize          int     `json:"max_sample_size,omitempty"`
	IncludePasses          *bool   `json:"include_passes,omitempty"`
}

func (s *Server) handleAnalyzeInline(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithField("cause", err.Error())
	}
	if len(req.Comments) == 0 {
		return apperrors.ValidationError("comments must not be empty")
	}

	return s.runAnalysis(c, app.AnalyzeRequest{
		Comments: req.Comments,
		Strategy: app.Strategy(req.Strategy),
		Config:   s.engineConfig(req.Options),
	})
}

func (s *Server) handleAnalyzeConversation(c echo.Context) error {
	if s.conversations == nil {
		return apperrors.UnavailableError("conversation storage is not configured")
	}

	conversationID := c.Param("id")
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body").WithField("cause", err.Error())
	}

	comments, err := s.conversations.GetComments(c.Request().Context(), conversationID)
	if errors.Is(err, domain.ErrConversationNotFound) {
		return apperrors.NotFoundError("conversation not found").WithField("conversation_id", conversationID)
	}
	if err != nil {
		return apperrors.InternalError("failed to load conversation", err).WithField("conversation_id", conversationID)
	}
	if len(comments) == 0 {
		return apperrors.ValidationError("conversation has no comments").WithField("conversation_id", conversationID)
	}

	return s.runAnalysis(c, app.AnalyzeRequest{
		ConversationID: conversationID,
		Comments:       comments,
		Strategy:       app.Strategy(req.Strategy),
		Config:         s.engineConfig(req.Options),
	})
}

func (s *Server) runAnalysis(c echo.Context, req app.AnalyzeRequest) error {
	report, err := s.app.Analyze(c.Request().Context(), req)
	switch {
	case errors.Is(err, domain.ErrMixedVoteShapes),
		errors.Is(err, domain.ErrGroupVotesRequired):
		return apperrors.ValidationError(err.Error())
	case err != nil:
		return apperrors.InternalError("analysis failed", err)
	}

	if s.reports != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			return apperrors.InternalError("failed to encode report", err)
		}
		if err := s.reports.Save(c.Request().Context(), report.RunID, report.ConversationID, payload); err != nil {
			// The analysis succeeded; losing the snapshot should not fail
			// the request.
			slog.Error("Failed to persist report", "run_id", report.RunID, "error", err)
		}
	}

	if err := c.JSON(http.StatusOK, report); err != nil {
		return fmt.Errorf("failed to write report response: %w", err)
	}
	return nil
}

func (s *Server) handleGetReport(c echo.Context) error {
	if s.reports == nil {
		return apperrors.UnavailableError("report storage is not configured")
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid report id").WithField("id", c.Param("id"))
	}

	payload, _, err := s.reports.GetByID(c.Request().Context(), runID)
	if errors.Is(err, domain.ErrReportNotFound) {
		return apperrors.NotFoundError("report not found").WithField("id", runID.String())
	}
	if err != nil {
		return apperrors.InternalError("failed to load report", err).WithField("id", runID.String())
	}

	return c.JSONBlob(http.StatusOK, payload)
}

// engineConfig merges per-request overrides onto the service defaults.
func (s *Server) engineConfig(opts *analyzeOptions) *stats.Config {
	if opts == nil {
		return nil
	}
	cfg := s.config.Engine
	if opts.MinVoteCount > 0 {
		cfg.MinVoteCount = opts.MinVoteCount
	}
	if opts.MinCommonGroundProb > 0 {
		cfg.MinCommonGroundProb = opts.MinCommonGroundProb
	}
	if opts.MinAgreeProbDifference > 0 {
		cfg.MinAgreeProbDifference = opts.MinAgreeProbDifference
	}
	if opts.MaxSampleSize > 0 {
		cfg.MaxSampleSize = opts.MaxSampleSize
	}
	if opts.IncludePasses != nil {
		cfg.IncludePasses = *opts.IncludePasses
	}
	return &cfg
}
