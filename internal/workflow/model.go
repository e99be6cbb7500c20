package workflow

import (
	"encoding/json"
	"time"
)

// Transition is an immutable log entry recording one move between states.
type Transition struct {
	From   State  `json:"from"`
	To     State  `json:"to"`
	Action string `json:"action"`
	UserID string `json:"user_id"`
	// Timestamp is the wall-clock time of the transition.
	Timestamp time.Time `json:"timestamp"`
	// DurationMinutes is the elapsed time since the previous transition (or
	// since the instance started, for the first one), rounded down to whole
	// minutes.
	DurationMinutes int              `json:"duration_minutes"`
	Data            *json.RawMessage `json:"data,omitempty"`
}

// ActionState records the completion of one action in one state. Completions
// are retained as history even after the instance leaves the state.
type ActionState struct {
	State       State            `json:"state"`
	ActionID    string           `json:"action_id"`
	CompletedBy string           `json:"completed_by"`
	CompletedAt time.Time        `json:"completed_at"`
	Data        *json.RawMessage `json:"data,omitempty"`
}

// Instance tracks one live or historical workflow. The store owns all
// instances; callers hold only the id and read snapshots.
type Instance struct {
	ID            string           `json:"id"`
	Type          Type             `json:"type"`
	EntityID      string           `json:"entity_id"`
	EntityType    string           `json:"entity_type"`
	CurrentState  State            `json:"current_state"`
	PreviousState State            `json:"previous_state,omitempty"`
	// Progress is derived from the catalog weight of the current state plus
	// the required-action completion bonus; it is never set directly.
	Progress         int              `json:"progress"`
	StartedAt        time.Time        `json:"started_at"`
	ActualCompletion *time.Time       `json:"actual_completion,omitempty"`
	Transitions      []Transition     `json:"transitions"`
	Actions          []ActionState    `json:"actions"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Active reports whether the instance has not yet reached a terminal state.
func (in *Instance) Active() bool {
	return in.ActualCompletion == nil
}

// actionState returns the completion record for (state, actionID), if any.
func (in *Instance) actionState(s State, actionID string) (int, bool) {
	for i := range in.Actions {
		if in.Actions[i].State == s && in.Actions[i].ActionID == actionID {
			return i, true
		}
	}
	return 0, false
}

// completedRequiredActions counts how many of the given state's required
// actions have a completion record.
func (in *Instance) completedRequiredActions(def StateDefinition) int {
	n := 0
	for _, a := range def.RequiredActions {
		if !a.Required {
			continue
		}
		if _, ok := in.actionState(def.ID, a.ID); ok {
			n++
		}
	}
	return n
}

// lastActivity returns the timestamp the next transition duration is measured
// from: the latest transition, or the instance start.
func (in *Instance) lastActivity() time.Time {
	if n := len(in.Transitions); n > 0 {
		return in.Transitions[n-1].Timestamp
	}
	return in.StartedAt
}

// snapshot returns a deep copy so callers cannot mutate stored state.
func (in *Instance) snapshot() *Instance {
	cp := *in
	cp.Transitions = make([]Transition, len(in.Transitions))
	copy(cp.Transitions, in.Transitions)
	cp.Actions = make([]ActionState, len(in.Actions))
	copy(cp.Actions, in.Actions)
	if in.Metadata != nil {
		cp.Metadata = make(map[string]string, len(in.Metadata))
		for k, v := range in.Metadata {
			cp.Metadata[k] = v
		}
	}
	if in.ActualCompletion != nil {
		t := *in.ActualCompletion
		cp.ActualCompletion = &t
	}
	return &cp
}
