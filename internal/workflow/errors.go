package workflow

import "fmt"

// NotFoundError is returned when an operation references a workflow instance
// id that is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow %s not found", e.ID)
}

// InvalidStateError is returned when a state id does not exist in the catalog
// for the given workflow type.
type InvalidStateError struct {
	Type  Type
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("state %s not defined for workflow type %s", e.State, e.Type)
}

// InvalidTransitionError is returned when the requested target state is not
// among the current state's allowed next states.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ActionNotFoundError is returned when an action id is not part of the
// instance's current state.
type ActionNotFoundError struct {
	ActionID string
	State    State
}

func (e *ActionNotFoundError) Error() string {
	return fmt.Sprintf("action %s not found in state %s", e.ActionID, e.State)
}
