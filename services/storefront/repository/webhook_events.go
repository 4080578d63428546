package repository

import (
	"context"
	"fmt"
)

// PostgresWebhookEventRepository guarda os IDs de eventos já processados.
// A unicidade de event_id torna o registro seguro sob entregas concorrentes.
type PostgresWebhookEventRepository struct {
	db DBTX
}

func NewWebhookEventRepository(db DBTX) *PostgresWebhookEventRepository {
	return &PostgresWebhookEventRepository{db: db}
}

// Exists verifica se o evento já foi processado (para idempotência)
func (r *PostgresWebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM processed_webhook_events WHERE event_id = $1)", eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check webhook event: %w", err)
	}
	return exists, nil
}

// Record insere o evento no ledger. Devolve false se outro processo já o registrou.
func (r *PostgresWebhookEventRepository) Record(ctx context.Context, eventID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO processed_webhook_events (event_id) VALUES ($1)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
