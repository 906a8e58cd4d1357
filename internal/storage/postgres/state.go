package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

// ReadState fetches the planner_state row for key.
func (s *Store) ReadState(ctx context.Context, key models.StateKey) (models.StateRecord, error) {
	if !validID(key.SubjectID) {
		return models.StateRecord{}, storage.ErrNotFound
	}
	const query = `
	SELECT payload, updated_at
	FROM planner_state
	WHERE user_id = $1::uuid AND scope_id = $2 AND state_key = $3;`
	rec := models.StateRecord{StateKey: key}
	var payload []byte
	err := s.pool.QueryRow(ctx, query, key.SubjectID, key.ScopeID, key.StateKey).Scan(&payload, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StateRecord{}, storage.ErrNotFound
		}
		return models.StateRecord{}, fmt.Errorf("read state: %w", err)
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

// UpsertState writes payload for key, replacing any existing row.
func (s *Store) UpsertState(ctx context.Context, key models.StateKey, payload json.RawMessage) (models.StateRecord, error) {
	const query = `
	INSERT INTO planner_state (user_id, scope_id, state_key, payload, updated_at)
	VALUES ($1::uuid, $2, $3, $4::jsonb, NOW())
	ON CONFLICT (user_id, scope_id, state_key)
	DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	RETURNING payload, updated_at;`
	rec := models.StateRecord{StateKey: key}
	var stored []byte
	err := s.pool.QueryRow(ctx, query, key.SubjectID, key.ScopeID, key.StateKey, string(payload)).Scan(&stored, &rec.UpdatedAt)
	if err != nil {
		if isMissingReference(err) {
			return models.StateRecord{}, storage.ErrNotFound
		}
		return models.StateRecord{}, fmt.Errorf("upsert state: %w", err)
	}
	rec.Payload = json.RawMessage(stored)
	return rec, nil
}
