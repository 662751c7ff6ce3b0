package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "caslkey/pkg/domain"
	audit "caslkey/pkg/platform/audit"
	txcontext "caslkey/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and relayed to Kafka; the consumer
// materializes them into audit_events for querying.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSchema creates the outbox and audit tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Payload is the JSON structure relayed to Kafka. Field names match
// audit.Event so consumers can decode straight into it.
type Payload struct {
	ID            string `json:"ID"`
	Category      string `json:"Category"`
	Timestamp     string `json:"Timestamp"`
	SessionID     string `json:"SessionID,omitempty"`
	Subject       string `json:"Subject,omitempty"`
	Action        string `json:"Action"`
	Method        string `json:"Method,omitempty"`
	Decision      string `json:"Decision,omitempty"`
	Reason        string `json:"Reason,omitempty"`
	RequestID     string `json:"RequestID,omitempty"`
	Device        string `json:"Device,omitempty"`
	IP            string `json:"IP,omitempty"`
	Severity      string `json:"Severity,omitempty"`
	SubjectIDHash string `json:"SubjectIDHash,omitempty"`
}

// NewPayload builds the relay payload for event.
func NewPayload(eventID uuid.UUID, event audit.Event) Payload {
	p := Payload{
		ID:            eventID.String(),
		Category:      string(audit.AuditEvent(event.Action).Category()),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Subject:       event.Subject,
		Action:        event.Action,
		Method:        event.Method,
		Decision:      event.Decision,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
		Device:        event.Device,
		IP:            event.IP,
		Severity:      string(event.Severity),
		SubjectIDHash: event.SubjectIDHash,
	}
	if !event.SessionID.IsNil() {
		p.SessionID = event.SessionID.String()
	}
	return p
}

// ToEvent converts a relayed payload back into an event.
func (p Payload) ToEvent() (uuid.UUID, audit.Event, error) {
	eventID, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, audit.Event{}, fmt.Errorf("parse event id: %w", err)
	}
	event := audit.Event{
		Category:      audit.EventCategory(p.Category),
		Subject:       p.Subject,
		Action:        p.Action,
		Method:        p.Method,
		Decision:      p.Decision,
		Reason:        p.Reason,
		RequestID:     p.RequestID,
		Device:        p.Device,
		IP:            p.IP,
		Severity:      audit.Severity(p.Severity),
		SubjectIDHash: p.SubjectIDHash,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if p.SessionID != "" {
		if sid, err := id.ParseSessionID(p.SessionID); err == nil {
			event.SessionID = sid
		}
	}
	return eventID, event, nil
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	payloadBytes, err := json.Marshal(NewPayload(eventID, event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.SessionID.IsNil() {
		aggregateType = "session"
		aggregateID = event.SessionID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// OutboxEntry is one unpublished outbox row.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// FetchPending locks up to limit unpublished entries. Call inside a
// transaction so the lock holds until MarkPublished commits.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps entries as relayed.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, entryID := range ids {
		keys[i] = entryID.String()
	}
	_, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`,
		s.now(), pq.Array(keys),
	)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// AppendWithID inserts an audit event into the audit_events table with a specific ID.
// Used by the Kafka consumer to materialize events for querying.
// This is idempotent - duplicate inserts are ignored via ON CONFLICT DO NOTHING.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, category, timestamp, session_id, subject, action,
			method, decision, reason, request_id, device, ip, severity, subject_id_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`

	var sessionID *uuid.UUID
	if !event.SessionID.IsNil() {
		sid := uuid.UUID(event.SessionID)
		sessionID = &sid
	}

	_, err := s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		sessionID,
		event.Subject,
		event.Action,
		event.Method,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.Device,
		event.IP,
		string(event.Severity),
		event.SubjectIDHash,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySession returns the materialized events of one session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID id.SessionID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, session_id, subject, action,
			   method, decision, reason, request_id, device, ip, severity, subject_id_hash
		FROM audit_events
		WHERE session_id = $1
		ORDER BY timestamp
	`

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(sessionID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category, severity string
			event              audit.Event
			sid                *uuid.UUID
		)
		err := rows.Scan(
			&category,
			&event.Timestamp,
			&sid,
			&event.Subject,
			&event.Action,
			&event.Method,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.Device,
			&event.IP,
			&severity,
			&event.SubjectIDHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Severity = audit.Severity(severity)
		if sid != nil {
			event.SessionID = id.SessionID(*sid)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
