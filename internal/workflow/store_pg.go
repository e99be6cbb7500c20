package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// storePG persists instances in the workflow_instance table. Transition and
// action logs are stored as JSONB; the engine only ever appends to them.
type storePG struct {
	pool *pgxpool.Pool
}

// NewStorePG creates a Postgres-backed instance store.
func NewStorePG(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

const instanceCols = `id, type, entity_id, entity_type, current_state, previous_state,
	progress, started_at, actual_completion, transitions, actions, metadata`

func (s *storePG) scan(row pgx.Row) (*Instance, error) {
	var (
		in            Instance
		previousState *string
		transitions   []byte
		actions       []byte
		metadata      []byte
	)
	err := row.Scan(&in.ID, &in.Type, &in.EntityID, &in.EntityType, &in.CurrentState,
		&previousState, &in.Progress, &in.StartedAt, &in.ActualCompletion,
		&transitions, &actions, &metadata)
	if err != nil {
		return nil, err
	}
	if previousState != nil {
		in.PreviousState = State(*previousState)
	}
	if err := json.Unmarshal(transitions, &in.Transitions); err != nil {
		return nil, fmt.Errorf("decode transitions for %s: %w", in.ID, err)
	}
	if err := json.Unmarshal(actions, &in.Actions); err != nil {
		return nil, fmt.Errorf("decode actions for %s: %w", in.ID, err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &in.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", in.ID, err)
		}
	}
	return &in, nil
}

func encodeInstance(in *Instance) (previousState *string, transitions, actions, metadata []byte, err error) {
	if in.PreviousState != "" {
		ps := string(in.PreviousState)
		previousState = &ps
	}
	if in.Transitions == nil {
		transitions = []byte("[]")
	} else if transitions, err = json.Marshal(in.Transitions); err != nil {
		return nil, nil, nil, nil, err
	}
	if in.Actions == nil {
		actions = []byte("[]")
	} else if actions, err = json.Marshal(in.Actions); err != nil {
		return nil, nil, nil, nil, err
	}
	if in.Metadata != nil {
		if metadata, err = json.Marshal(in.Metadata); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return previousState, transitions, actions, metadata, nil
}

func (s *storePG) Create(ctx context.Context, in *Instance) error {
	previousState, transitions, actions, metadata, err := encodeInstance(in)
	if err != nil {
		return fmt.Errorf("encode instance: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO workflow_instance (id, type, entity_id, entity_type, current_state,
			previous_state, progress, started_at, actual_completion, transitions, actions, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		in.ID, in.Type, in.EntityID, in.EntityType, in.CurrentState,
		previousState, in.Progress, in.StartedAt, in.ActualCompletion,
		transitions, actions, metadata)
	return err
}

func (s *storePG) Get(ctx context.Context, id string) (*Instance, error) {
	in, err := s.scan(s.pool.QueryRow(ctx,
		`SELECT `+instanceCols+` FROM workflow_instance WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	return in, err
}

func (s *storePG) Update(ctx context.Context, in *Instance) error {
	previousState, transitions, actions, metadata, err := encodeInstance(in)
	if err != nil {
		return fmt.Errorf("encode instance: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE workflow_instance
		SET current_state = $2, previous_state = $3, progress = $4,
			actual_completion = $5, transitions = $6, actions = $7, metadata = $8
		WHERE id = $1`,
		in.ID, in.CurrentState, previousState, in.Progress,
		in.ActualCompletion, transitions, actions, metadata)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{ID: in.ID}
	}
	return nil
}

func (s *storePG) list(ctx context.Context, query string, args ...interface{}) ([]*Instance, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Instance
	for rows.Next() {
		in, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *storePG) List(ctx context.Context) ([]*Instance, error) {
	return s.list(ctx, `SELECT `+instanceCols+` FROM workflow_instance`)
}

func (s *storePG) ListByEntity(ctx context.Context, entityID, entityType string) ([]*Instance, error) {
	return s.list(ctx, `SELECT `+instanceCols+` FROM workflow_instance
		WHERE entity_id = $1 AND entity_type = $2`, entityID, entityType)
}

func (s *storePG) ListActive(ctx context.Context) ([]*Instance, error) {
	return s.list(ctx, `SELECT `+instanceCols+` FROM workflow_instance
		WHERE actual_completion IS NULL`)
}
