// Package httpserver exposes the analysis engine over a small JSON API.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deliberation-tools/groundwork/internal/app"
	"github.com/deliberation-tools/groundwork/internal/domain"
	"github.com/deliberation-tools/groundwork/internal/platform/config"
)

// analysisService is the application-layer contract the handlers depend on.
type analysisService interface {
	Analyze(ctx context.Context, req app.AnalyzeRequest) (*app.Report, error)
}

// conversationSource loads stored conversations. Nil when the service runs
// without a database.
type conversationSource interface {
	GetComments(ctx context.Context, conversationID string) ([]domain.Comment, error)
}

// reportStore persists report snapshots. Nil when the service runs without
// a database.
type reportStore interface {
	Save(ctx context.Context, runID uuid.UUID, conversationID string, payload []byte) error
	GetByID(ctx context.Context, runID uuid.UUID) ([]byte, time.Time, error)
}

// HealthCheck is a named readiness check.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server wires the echo instance to the application service.
type Server struct {
	echo   *echo.Echo
	config *config.Config

	app           analysisService
	conversations conversationSource
	reports       reportStore

	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer builds the HTTP server. conversations and reports may be nil;
// the corresponding routes then answer 503.
func NewServer(cfg *config.Config, svc analysisService, conversations conversationSource, reports reportStore, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:          e,
		config:        cfg,
		app:           svc,
		conversations: conversations,
		reports:       reports,
		healthChecks:  healthChecks,
		startTime:     time.Now(),
	}
	srv.registerRoutes()
	return srv
}

// Start begins serving on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
