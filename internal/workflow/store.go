package workflow

import "context"

// Store owns all workflow instances. Implementations must return copies the
// caller may mutate freely; the engine serializes read-modify-write cycles
// per instance, so stores do not need per-row locking beyond their own
// internal consistency.
type Store interface {
	Create(ctx context.Context, in *Instance) error
	Get(ctx context.Context, id string) (*Instance, error)
	Update(ctx context.Context, in *Instance) error
	List(ctx context.Context) ([]*Instance, error)
	ListByEntity(ctx context.Context, entityID, entityType string) ([]*Instance, error)
	ListActive(ctx context.Context) ([]*Instance, error)
}
