package workflow

import "fmt"

// Type identifies a category of clinical process with its own state catalog.
type Type string

const (
	TypePatient      Type = "patient"
	TypePrescription Type = "prescription"
	TypeAppointment  Type = "appointment"
)

// State is a named stage within a workflow type.
type State string

// ActionDefinition describes a discrete sub-task within a state. Required
// actions gate the "ready to advance" signal; optional actions are tracked
// but do not affect progress.
type ActionDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// StateDefinition is a static catalog entry for one state of one workflow
// type.
type StateDefinition struct {
	ID          State  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// ProgressWeight is the progress value (0-100) assigned to an instance
	// sitting in this state, before any action-completion bonus.
	ProgressWeight int `json:"progress_weight"`
	// EstimatedDurationMinutes is a planning hint, not enforced.
	EstimatedDurationMinutes int `json:"estimated_duration_minutes,omitempty"`
	// AllowedNextStates lists the legal transition targets. An empty list
	// marks a terminal state.
	AllowedNextStates []State            `json:"allowed_next_states"`
	RequiredActions   []ActionDefinition `json:"required_actions"`
}

// Terminal reports whether the state has no outgoing transitions.
func (d StateDefinition) Terminal() bool {
	return len(d.AllowedNextStates) == 0
}

// Action returns the action definition with the given id, if present.
func (d StateDefinition) Action(actionID string) (ActionDefinition, bool) {
	for _, a := range d.RequiredActions {
		if a.ID == actionID {
			return a, true
		}
	}
	return ActionDefinition{}, false
}

func (d StateDefinition) requiredActionCount() int {
	n := 0
	for _, a := range d.RequiredActions {
		if a.Required {
			n++
		}
	}
	return n
}

// Catalog maps workflow types to their state definitions. Registration
// validates cross-references so a malformed catalog fails at startup rather
// than at transition time.
type Catalog struct {
	types map[Type]map[State]StateDefinition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[Type]map[State]StateDefinition)}
}

// DefaultCatalog returns a catalog with the built-in patient, prescription
// and appointment workflows registered.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	mustRegister(c, TypePatient, PatientStates())
	mustRegister(c, TypePrescription, PrescriptionStates())
	mustRegister(c, TypeAppointment, AppointmentStates())
	return c
}

func mustRegister(c *Catalog, t Type, states []StateDefinition) {
	if err := c.Register(t, states); err != nil {
		panic(err)
	}
}

// Register adds the state set for a workflow type. It fails if a state id is
// duplicated, a progress weight is out of range, or an allowed next state
// does not resolve to a state in the same set.
func (c *Catalog) Register(t Type, states []StateDefinition) error {
	if len(states) == 0 {
		return fmt.Errorf("workflow type %s: no states", t)
	}
	byID := make(map[State]StateDefinition, len(states))
	for _, s := range states {
		if _, dup := byID[s.ID]; dup {
			return fmt.Errorf("workflow type %s: duplicate state %s", t, s.ID)
		}
		if s.ProgressWeight < 0 || s.ProgressWeight > 100 {
			return fmt.Errorf("workflow type %s: state %s: progress weight %d out of range", t, s.ID, s.ProgressWeight)
		}
		seen := make(map[string]bool, len(s.RequiredActions))
		for _, a := range s.RequiredActions {
			if seen[a.ID] {
				return fmt.Errorf("workflow type %s: state %s: duplicate action %s", t, s.ID, a.ID)
			}
			seen[a.ID] = true
		}
		byID[s.ID] = s
	}
	for _, s := range states {
		for _, next := range s.AllowedNextStates {
			if _, ok := byID[next]; !ok {
				return fmt.Errorf("workflow type %s: state %s: unknown next state %s", t, s.ID, next)
			}
		}
	}
	c.types[t] = byID
	return nil
}

// Definition looks up the definition of a state. Absence is a normal
// outcome, not an error.
func (c *Catalog) Definition(t Type, s State) (StateDefinition, bool) {
	states, ok := c.types[t]
	if !ok {
		return StateDefinition{}, false
	}
	def, ok := states[s]
	return def, ok
}

// HasType reports whether a workflow type is registered.
func (c *Catalog) HasType(t Type) bool {
	_, ok := c.types[t]
	return ok
}

// CanTransition reports whether the catalog permits moving from one state to
// another within a workflow type.
func (c *Catalog) CanTransition(t Type, from, to State) bool {
	def, ok := c.Definition(t, from)
	if !ok {
		return false
	}
	for _, next := range def.AllowedNextStates {
		if next == to {
			return true
		}
	}
	return false
}

func (c *Catalog) progressWeight(t Type, s State) int {
	def, ok := c.Definition(t, s)
	if !ok {
		return 0
	}
	return def.ProgressWeight
}
