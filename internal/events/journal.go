package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"channelos/internal/domain"
)

const (
	TypeIdeasLocked       = "ideas.locked"
	TypeInputUpdated      = "input.updated"
	TypePhaseMoved        = "workflow.phase.moved"
	TypeChecklistToggled  = "workflow.checklist.toggled"
	TypeDeadlineUpdated   = "workflow.deadline.updated"
	TypeRecipeTriggered   = "recipe.triggered"
	TypeTitleLogged       = "title.logged"
	defaultLatestPageSize = 20
)

type EventPayload map[string]any

// Journal records board activity.
type Journal interface {
	Append(ctx context.Context, evtType, entityID string, payload EventPayload) error
	Latest(ctx context.Context, n int, evtType string) ([]domain.Event, error)
	After(ctx context.Context, cursor int64, n int) ([]domain.Event, error)
}

// SQLJournal appends events to the workspace events table.
type SQLJournal struct {
	DB  *sql.DB
	Now func() time.Time
}

func (w SQLJournal) Append(ctx context.Context, evtType, entityID string, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	data, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO events(ts,type,entity_id,payload_json) VALUES (?,?,?,?)`,
		ts, evtType, nullable(entityID), data)
	return err
}

// Latest returns up to n events, newest first, optionally filtered by type.
func (w SQLJournal) Latest(ctx context.Context, n int, evtType string) ([]domain.Event, error) {
	if n <= 0 {
		n = defaultLatestPageSize
	}
	query := `SELECT id,ts,type,COALESCE(entity_id,''),payload_json FROM events`
	var args []any
	if evtType != "" {
		query += ` WHERE type=?`
		args = append(args, evtType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)
	return w.query(ctx, query, args...)
}

// After returns up to n events with an id greater than cursor, oldest first.
func (w SQLJournal) After(ctx context.Context, cursor int64, n int) ([]domain.Event, error) {
	if n <= 0 {
		n = defaultLatestPageSize
	}
	return w.query(ctx, `SELECT id,ts,type,COALESCE(entity_id,''),payload_json FROM events
		WHERE id > ? ORDER BY id ASC LIMIT ?`, cursor, n)
}

func (w SQLJournal) query(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := w.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func marshalPayload(payload EventPayload) (string, error) {
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event payload: %w", err)
	}
	return string(data), nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
