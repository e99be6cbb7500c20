package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine drives workflow instances through their state catalogs. It is safe
// for concurrent use: mutations against the same instance are serialized,
// mutations against different instances proceed in parallel.
type Engine struct {
	catalog *Catalog
	store   Store
	disp    *dispatcher
	logger  zerolog.Logger

	locks [64]sync.Mutex

	now func() time.Time
}

// New creates an Engine. Pass NopNotifier/NopAuditor when the integrating
// system does not wire real collaborators.
func New(catalog *Catalog, store Store, notifier Notifier, auditor Auditor, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog: catalog,
		store:   store,
		disp:    newDispatcher(notifier, auditor, logger),
		logger:  logger,
		now:     time.Now,
	}
}

// Close drains pending notification/audit events. Call once at shutdown.
func (e *Engine) Close() {
	e.disp.close()
}

// Catalog exposes the engine's state catalog for read-only lookups.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &e.locks[h.Sum32()%uint32(len(e.locks))]
}

// CreateParams are the inputs for CreateWorkflow.
type CreateParams struct {
	Type         Type
	EntityID     string
	EntityType   string
	InitialState State
	Metadata     map[string]string
	UserID       string
}

// CreateWorkflow allocates a new instance anchored to a domain entity. The
// initial state must exist in the catalog for the given type.
func (e *Engine) CreateWorkflow(ctx context.Context, p CreateParams) (string, error) {
	def, ok := e.catalog.Definition(p.Type, p.InitialState)
	if !ok {
		return "", &InvalidStateError{Type: p.Type, State: p.InitialState}
	}

	in := &Instance{
		ID:           uuid.NewString(),
		Type:         p.Type,
		EntityID:     p.EntityID,
		EntityType:   p.EntityType,
		CurrentState: p.InitialState,
		Progress:     def.ProgressWeight,
		StartedAt:    e.now().UTC(),
		Metadata:     p.Metadata,
	}

	if err := e.store.Create(ctx, in); err != nil {
		return "", fmt.Errorf("create workflow: %w", err)
	}

	e.disp.publish(outboundEvent{audit: &AuditEvent{
		EventType: AuditWorkflowCreated,
		UserID:    p.UserID,
		Data: map[string]string{
			"workflow_id":   in.ID,
			"type":          string(p.Type),
			"entity_id":     p.EntityID,
			"initial_state": string(p.InitialState),
		},
	}})

	return in.ID, nil
}

// TransitionParams are the inputs for Transition.
type TransitionParams struct {
	WorkflowID string
	ToState    State
	Action     string
	UserID     string
	Data       *json.RawMessage
}

// Transition moves an instance to a new state. The target must be among the
// current state's allowed next states. The operation is not idempotent:
// repeating it appends another transition record.
func (e *Engine) Transition(ctx context.Context, p TransitionParams) error {
	mu := e.lockFor(p.WorkflowID)
	mu.Lock()
	defer mu.Unlock()

	in, err := e.store.Get(ctx, p.WorkflowID)
	if err != nil {
		return err
	}

	from := in.CurrentState
	if !e.catalog.CanTransition(in.Type, from, p.ToState) {
		return &InvalidTransitionError{From: from, To: p.ToState}
	}

	now := e.now().UTC()
	tr := Transition{
		From:            from,
		To:              p.ToState,
		Action:          p.Action,
		UserID:          p.UserID,
		Timestamp:       now,
		DurationMinutes: wholeMinutes(in.lastActivity(), now),
		Data:            p.Data,
	}

	in.Transitions = append(in.Transitions, tr)
	in.PreviousState = from
	in.CurrentState = p.ToState
	in.Progress = e.catalog.progressWeight(in.Type, p.ToState)

	toDef, _ := e.catalog.Definition(in.Type, p.ToState)
	if toDef.Terminal() && in.ActualCompletion == nil {
		in.ActualCompletion = &now
	}

	if err := e.store.Update(ctx, in); err != nil {
		return fmt.Errorf("update workflow %s: %w", in.ID, err)
	}

	ev := outboundEvent{audit: &AuditEvent{
		EventType: AuditWorkflowTransition,
		UserID:    p.UserID,
		Data: map[string]string{
			"workflow_id":      in.ID,
			"from":             string(from),
			"to":               string(p.ToState),
			"duration_minutes": fmt.Sprintf("%d", tr.DurationMinutes),
		},
	}}
	ev.notification = stateChangeNotification(in, p.ToState)
	e.disp.publish(ev)

	return nil
}

// ActionParams are the inputs for CompleteAction.
type ActionParams struct {
	WorkflowID string
	ActionID   string
	UserID     string
	Data       *json.RawMessage
}

// CompleteAction marks an action of the instance's current state as
// completed. Completing the same action twice is last-write-wins. When all
// required actions of the state are done, a ready-to-advance notification is
// sent to the acting user; the transition itself stays an explicit caller
// decision.
func (e *Engine) CompleteAction(ctx context.Context, p ActionParams) error {
	mu := e.lockFor(p.WorkflowID)
	mu.Lock()
	defer mu.Unlock()

	in, err := e.store.Get(ctx, p.WorkflowID)
	if err != nil {
		return err
	}

	def, ok := e.catalog.Definition(in.Type, in.CurrentState)
	if !ok {
		return &InvalidStateError{Type: in.Type, State: in.CurrentState}
	}
	if _, ok := def.Action(p.ActionID); !ok {
		return &ActionNotFoundError{ActionID: p.ActionID, State: in.CurrentState}
	}

	record := ActionState{
		State:       in.CurrentState,
		ActionID:    p.ActionID,
		CompletedBy: p.UserID,
		CompletedAt: e.now().UTC(),
		Data:        p.Data,
	}
	if i, found := in.actionState(in.CurrentState, p.ActionID); found {
		in.Actions[i] = record
	} else {
		in.Actions = append(in.Actions, record)
	}

	in.Progress = actionProgress(def, in)

	if err := e.store.Update(ctx, in); err != nil {
		return fmt.Errorf("update workflow %s: %w", in.ID, err)
	}

	ev := outboundEvent{audit: &AuditEvent{
		EventType: AuditActionCompleted,
		UserID:    p.UserID,
		Data: map[string]string{
			"workflow_id": in.ID,
			"action_id":   p.ActionID,
			"state":       string(in.CurrentState),
		},
	}}
	if total := def.requiredActionCount(); total > 0 && in.completedRequiredActions(def) == total {
		ev.notification = readyToAdvanceNotification(in, def, p.UserID)
	}
	e.disp.publish(ev)

	return nil
}

// actionProgress computes the state's base weight plus the required-action
// completion bonus. Each state contributes at most one 10-point band on top
// of its weight, capped at 100. Optional actions do not count on either side
// of the ratio.
func actionProgress(def StateDefinition, in *Instance) int {
	progress := def.ProgressWeight
	if total := def.requiredActionCount(); total > 0 {
		progress += in.completedRequiredActions(def) * 10 / total
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// GetWorkflow returns a snapshot of an instance.
func (e *Engine) GetWorkflow(ctx context.Context, id string) (*Instance, error) {
	return e.store.Get(ctx, id)
}

// GetWorkflowsByEntity returns all instances tracking the given entity,
// newest first. An entity may have multiple historical instances of the same
// type.
func (e *Engine) GetWorkflowsByEntity(ctx context.Context, entityID, entityType string) ([]*Instance, error) {
	items, err := e.store.ListByEntity(ctx, entityID, entityType)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})
	return items, nil
}

// GetActiveWorkflows returns all instances that have not reached a terminal
// state, oldest first.
func (e *Engine) GetActiveWorkflows(ctx context.Context) ([]*Instance, error) {
	items, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartedAt.Before(items[j].StartedAt)
	})
	return items, nil
}

// wholeMinutes returns the elapsed whole minutes between two times, rounded
// down, never negative.
func wholeMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
