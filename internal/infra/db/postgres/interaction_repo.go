package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/audit-compliance/internal/domain/interactions"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS compliance_assessments (
  id          UUID        PRIMARY KEY,
  control_id  TEXT        NOT NULL,
  assessment  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_compliance_assessments_created ON compliance_assessments (created_at)`,
	`CREATE TABLE IF NOT EXISTS compliance_chat_turns (
  id                UUID        PRIMARY KEY,
  user_message      TEXT        NOT NULL,
  assistant_message TEXT        NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_compliance_chat_turns_created ON compliance_chat_turns (created_at)`,
}

var _ domain.Log = (*InteractionRepository)(nil)

type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) EnsureSchema(ctx context.Context) error {
	for _, q := range schema {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *InteractionRepository) AppendAssessment(ctx context.Context, a domain.AssessmentRecord) error {
	const q = `
INSERT INTO compliance_assessments (id, control_id, assessment, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING;`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ControlID, a.Assessment, createdAt(a.Timestamp))
	return err
}

func (r *InteractionRepository) AppendChatTurn(ctx context.Context, t domain.ChatTurn) error {
	const q = `
INSERT INTO compliance_chat_turns (id, user_message, assistant_message, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING;`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.User, t.Assistant, createdAt(t.Timestamp))
	return err
}

// Snapshot reads both tables oldest first for the history command.
func (r *InteractionRepository) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		Assessments: []domain.AssessmentRecord{},
		ChatHistory: []domain.ChatTurn{},
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, control_id, assessment, created_at
FROM compliance_assessments
ORDER BY created_at ASC, id ASC;`)
	if err != nil {
		return snap, err
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.AssessmentRecord
		if err := rows.Scan(&a.ID, &a.ControlID, &a.Assessment, &a.Timestamp); err != nil {
			return snap, err
		}
		snap.Assessments = append(snap.Assessments, a)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	turns, err := r.db.QueryContext(ctx, `
SELECT id, user_message, assistant_message, created_at
FROM compliance_chat_turns
ORDER BY created_at ASC, id ASC;`)
	if err != nil {
		return snap, err
	}
	defer turns.Close()
	for turns.Next() {
		var t domain.ChatTurn
		if err := turns.Scan(&t.ID, &t.User, &t.Assistant, &t.Timestamp); err != nil {
			return snap, err
		}
		snap.ChatHistory = append(snap.ChatHistory, t)
	}
	return snap, turns.Err()
}

func createdAt(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}
