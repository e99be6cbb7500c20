package workflow

import (
	"strings"
	"testing"
)

func TestDefaultCatalogTypes(t *testing.T) {
	c := DefaultCatalog()
	for _, typ := range []Type{TypePatient, TypePrescription, TypeAppointment} {
		if !c.HasType(typ) {
			t.Errorf("missing built-in type %s", typ)
		}
	}
	if c.HasType(Type("lab")) {
		t.Error("unexpected type lab")
	}
}

func TestCatalogRegisterValidation(t *testing.T) {
	valid := func() []StateDefinition {
		return []StateDefinition{
			{ID: "open", ProgressWeight: 10, AllowedNextStates: []State{"closed"},
				RequiredActions: []ActionDefinition{{ID: "fill_form", Required: true}}},
			{ID: "closed", ProgressWeight: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func([]StateDefinition) []StateDefinition
		wantErr string
	}{
		{
			name:    "empty set",
			mutate:  func([]StateDefinition) []StateDefinition { return nil },
			wantErr: "no states",
		},
		{
			name: "duplicate state",
			mutate: func(s []StateDefinition) []StateDefinition {
				return append(s, StateDefinition{ID: "open", ProgressWeight: 50})
			},
			wantErr: "duplicate state",
		},
		{
			name: "weight out of range",
			mutate: func(s []StateDefinition) []StateDefinition {
				s[0].ProgressWeight = 120
				return s
			},
			wantErr: "out of range",
		},
		{
			name: "duplicate action",
			mutate: func(s []StateDefinition) []StateDefinition {
				s[0].RequiredActions = append(s[0].RequiredActions, ActionDefinition{ID: "fill_form"})
				return s
			},
			wantErr: "duplicate action",
		},
		{
			name: "dangling next state",
			mutate: func(s []StateDefinition) []StateDefinition {
				s[0].AllowedNextStates = []State{"archived"}
				return s
			},
			wantErr: "unknown next state",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCatalog()
			err := c.Register("ticket", tc.mutate(valid()))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %q, want substring %q", err, tc.wantErr)
			}
		})
	}

	c := NewCatalog()
	if err := c.Register("ticket", valid()); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		typ  Type
		from State
		to   State
		want bool
	}{
		{TypePatient, PatientRegistration, PatientWaiting, true},
		{TypePatient, PatientRegistration, PatientTriage, true},
		{TypePatient, PatientRegistration, PatientPharmacy, false},
		{TypePatient, PatientTriage, PatientWaiting, true}, // send back to waiting
		{TypePatient, PatientFollowUp, PatientRegistration, false},
		{TypePrescription, PrescriptionPrescribed, PrescriptionPharmacyReview, true},
		{TypePrescription, PrescriptionPrescribed, PrescriptionDispensed, false},
		{TypeAppointment, AppointmentScheduled, AppointmentCancelled, true},
		{TypeAppointment, AppointmentCompleted, AppointmentScheduled, false},
		{Type("lab"), "a", "b", false},
	}
	for _, tc := range tests {
		if got := c.CanTransition(tc.typ, tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", tc.typ, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	c := DefaultCatalog()

	terminals := map[Type][]State{
		TypePatient:      {PatientFollowUp},
		TypePrescription: {PrescriptionCompleted},
		TypeAppointment:  {AppointmentCompleted, AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled},
	}
	for typ, states := range terminals {
		for _, s := range states {
			def, ok := c.Definition(typ, s)
			if !ok {
				t.Errorf("missing definition %s/%s", typ, s)
				continue
			}
			if !def.Terminal() {
				t.Errorf("%s/%s should be terminal", typ, s)
			}
			if def.ProgressWeight != 100 {
				t.Errorf("%s/%s weight = %d, want 100", typ, s, def.ProgressWeight)
			}
		}
	}
}

func TestPatientProgressWeights(t *testing.T) {
	c := DefaultCatalog()
	want := map[State]int{
		PatientRegistration: 10,
		PatientWaiting:      20,
		PatientTriage:       30,
		PatientConsultation: 50,
		PatientDiagnostics:  60,
		PatientTreatment:    70,
		PatientPharmacy:     80,
		PatientBilling:      90,
		PatientDischarge:    95,
		PatientFollowUp:     100,
	}
	for s, w := range want {
		def, ok := c.Definition(TypePatient, s)
		if !ok {
			t.Errorf("missing patient state %s", s)
			continue
		}
		if def.ProgressWeight != w {
			t.Errorf("%s weight = %d, want %d", s, def.ProgressWeight, w)
		}
	}
}
