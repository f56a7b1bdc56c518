package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deliberation-tools/groundwork/internal/domain"
)

// ReportRepo persists finished report snapshots. Reports are written once
// and read back verbatim; the engine never consumes them.
type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// Save stores one report payload under its run id.
func (r *ReportRepo) Save(ctx context.Context, runID uuid.UUID, conversationID string, payload []byte) error {
	var convID *string
	if conversationID != "" {
		convID = &conversationID
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reports (id, conversation_id, payload) VALUES ($1, $2, $3)`,
		runID, convID, payload)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetByID returns a stored report payload and its creation time.
func (r *ReportRepo) GetByID(ctx context.Context, runID uuid.UUID) ([]byte, time.Time, error) {
	var payload []byte
	var createdAt time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT payload, created_at FROM reports WHERE id = $1`, runID).
		Scan(&payload, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, time.Time{}, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to get report: %w", err)
	}
	return payload, createdAt, nil
}
