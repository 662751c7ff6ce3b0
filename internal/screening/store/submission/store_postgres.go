package submission

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
	"caslkey/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore archives submissions in PostgreSQL. Re-submitting the same
// submission ID is a no-op that returns the original receipt time.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply submission schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Submit(ctx context.Context, sub models.Submission) (ports.Ack, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return ports.Ack{}, fmt.Errorf("marshal submission: %w", err)
	}

	var receivedAt time.Time
	err = s.pool.QueryRow(ctx, `
		INSERT INTO screening_submissions (id, session_id, casl_key_id, trust_level, score, payload, submitted_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING received_at`,
		uuid.UUID(sub.ID), uuid.UUID(sub.SessionID), sub.CaslKeyID.String(),
		sub.Summary.TrustLevel.String(), sub.Score.Score, payload, sub.SubmittedAt, s.now(),
	).Scan(&receivedAt)
	if err != nil {
		return ports.Ack{}, ports.NewTransportError(ports.ErrorUnavailable, "submission_archive", "submit", "insert submission", err)
	}
	return ports.Ack{SubmissionID: sub.ID, ReceivedAt: receivedAt}, nil
}

func (s *PostgresStore) Get(ctx context.Context, submissionID id.SubmissionID) (models.Submission, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM screening_submissions WHERE id = $1`,
		uuid.UUID(submissionID),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Submission{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Submission{}, fmt.Errorf("get submission: %w", err)
	}

	var sub models.Submission
	if err := json.Unmarshal(payload, &sub); err != nil {
		return models.Submission{}, fmt.Errorf("decode submission: %w", err)
	}
	return sub, nil
}

// ListByCaslKey returns the archived submissions for one identity, oldest
// first.
func (s *PostgresStore) ListByCaslKey(ctx context.Context, caslKeyID id.CaslKeyID) ([]models.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM screening_submissions WHERE casl_key_id = $1 ORDER BY submitted_at`,
		caslKeyID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []models.Submission
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		var sub models.Submission
		if err := json.Unmarshal(payload, &sub); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}
