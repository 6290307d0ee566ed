package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mlpipe/core/models"
)

// EventStore records and reads pipeline events
type EventStore interface {
	Record(ctx context.Context, event models.PipelineEvent) error
	ListEvents(ctx context.Context, resourceType models.ResourceType, name string, limit int) ([]models.PipelineEvent, error)
}

// EventRepository handles database operations for pipeline events
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Record inserts one observed event
func (r *EventRepository) Record(ctx context.Context, event models.PipelineEvent) error {
	query := `
		INSERT INTO pipeline_events (resource_type, resource_name, status, reason, meta_json, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var meta interface{}
	if len(event.MetaJSON) > 0 {
		data, err := json.Marshal(event.MetaJSON)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
		meta = string(data)
	}

	_, err := r.db.ExecContext(ctx, query,
		string(event.ResourceType),
		event.ResourceName,
		event.Status,
		event.Reason,
		meta,
		event.At,
	)
	if err != nil {
		return fmt.Errorf("failed to record event for %s: %w", event.ResourceName, err)
	}
	return nil
}

// ListEvents retrieves events for a resource, newest first
func (r *EventRepository) ListEvents(ctx context.Context, resourceType models.ResourceType, name string, limit int) ([]models.PipelineEvent, error) {
	query := `
		SELECT id, resource_type, resource_name, status, reason, meta_json, at
		FROM pipeline_events
		WHERE resource_type = $1 AND resource_name = $2
		ORDER BY at DESC
		LIMIT $3
	`

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, query, string(resourceType), name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.PipelineEvent
	for rows.Next() {
		var event models.PipelineEvent
		var resType string
		var metaJSON sql.NullString

		err := rows.Scan(
			&event.ID,
			&resType,
			&event.ResourceName,
			&event.Status,
			&event.Reason,
			&metaJSON,
			&event.At,
		)
		if err != nil {
			return nil, err
		}
		event.ResourceType = models.ResourceType(resType)

		// Parse meta JSON
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &event.MetaJSON); err != nil {
				return nil, fmt.Errorf("invalid metadata on event %d: %w", event.ID, err)
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

// NopStore is used when no database is configured
type NopStore struct{}

// Record discards the event
func (NopStore) Record(context.Context, models.PipelineEvent) error { return nil }

// ListEvents always returns no events
func (NopStore) ListEvents(context.Context, models.ResourceType, string, int) ([]models.PipelineEvent, error) {
	return nil, nil
}

// Open returns a Postgres-backed store when databaseURL is set and a NopStore
// otherwise. The returned close func is always safe to call.
func Open(databaseURL string) (EventStore, func() error, error) {
	if databaseURL == "" {
		return NopStore{}, func() error { return nil }, nil
	}
	db, err := NewDB(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return NewEventRepository(db), db.Close, nil
}
