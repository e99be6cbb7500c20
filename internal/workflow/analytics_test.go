package workflow

import (
	"context"
	"testing"
	"time"
)

func TestStats(t *testing.T) {
	e, _, _, clk := newTestEngine(t)
	defer e.Close()
	ctx := context.Background()

	// Three appointments completed after 10, 20 and 30 minutes.
	for i, d := range []time.Duration{10 * time.Minute, 20 * time.Minute, 30 * time.Minute} {
		id := mustCreate(t, e, CreateParams{
			Type: TypeAppointment, EntityID: "a-" + string(rune('1'+i)), EntityType: "appointment",
			InitialState: AppointmentScheduled,
		})
		clk.advance(d)
		if err := e.Transition(ctx, TransitionParams{WorkflowID: id, ToState: AppointmentCancelled}); err != nil {
			t.Fatalf("Transition: %v", err)
		}
	}

	// One still-active instance; it must not enter the duration average.
	mustCreate(t, e, CreateParams{
		Type: TypePatient, EntityID: "pat-1", EntityType: "patient",
		InitialState: PatientRegistration,
	})

	stats, err := e.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.Active != 1 || stats.Completed != 3 {
		t.Errorf("active/completed = %d/%d, want 1/3", stats.Active, stats.Completed)
	}
	if stats.Total != stats.Active+stats.Completed {
		t.Errorf("total %d != active %d + completed %d", stats.Total, stats.Active, stats.Completed)
	}
	if stats.AverageDurationMinutes != 20 {
		t.Errorf("average duration = %d, want 20", stats.AverageDurationMinutes)
	}
	if stats.ByType[TypeAppointment] != 3 || stats.ByType[TypePatient] != 1 {
		t.Errorf("by type = %v", stats.ByType)
	}
}

func TestStatsEmpty(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	defer e.Close()

	stats, err := e.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.AverageDurationMinutes != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestBottleneckAnalysis(t *testing.T) {
	e, _, _, clk := newTestEngine(t)
	defer e.Close()
	ctx := context.Background()

	// Two patients spend different times in registration before moving on.
	for i, d := range []time.Duration{10 * time.Minute, 30 * time.Minute} {
		id := mustCreate(t, e, CreateParams{
			Type: TypePatient, EntityID: "pat-" + string(rune('1'+i)), EntityType: "patient",
			InitialState: PatientRegistration,
		})
		clk.advance(d)
		if err := e.Transition(ctx, TransitionParams{WorkflowID: id, ToState: PatientWaiting}); err != nil {
			t.Fatalf("Transition: %v", err)
		}
	}
	// One quick waiting-to-triage hop.
	quick := mustCreate(t, e, CreateParams{
		Type: TypePatient, EntityID: "pat-3", EntityType: "patient",
		InitialState: PatientWaiting,
	})
	clk.advance(5 * time.Minute)
	if err := e.Transition(ctx, TransitionParams{WorkflowID: quick, ToState: PatientTriage}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	report, err := e.BottleneckAnalysis(ctx)
	if err != nil {
		t.Fatalf("BottleneckAnalysis: %v", err)
	}

	if len(report.SlowestStates) != 2 {
		t.Fatalf("slowest states = %d, want 2", len(report.SlowestStates))
	}
	top := report.SlowestStates[0]
	if top.Type != TypePatient || top.State != PatientRegistration {
		t.Errorf("top bottleneck = %s/%s, want patient/registration", top.Type, top.State)
	}
	if top.AverageDurationMinutes != 20 {
		t.Errorf("top average = %v, want 20", top.AverageDurationMinutes)
	}
	if top.Count != 2 {
		t.Errorf("top count = %d, want 2", top.Count)
	}
	if report.SlowestStates[1].State != PatientWaiting {
		t.Errorf("second bottleneck = %s, want waiting", report.SlowestStates[1].State)
	}

	// All three instances are still active.
	if got := report.StateDistribution["patient:waiting"]; got != 2 {
		t.Errorf("distribution patient:waiting = %d, want 2", got)
	}
	if got := report.StateDistribution["patient:triage"]; got != 1 {
		t.Errorf("distribution patient:triage = %d, want 1", got)
	}
}

func TestBottleneckAnalysisTruncatesToTen(t *testing.T) {
	e, _, _, clk := newTestEngine(t)
	defer e.Close()
	ctx := context.Background()

	// Walk one patient through the whole visit to generate many groups, then
	// add appointment and prescription hops.
	id := mustCreate(t, e, CreateParams{
		Type: TypePatient, EntityID: "pat-1", EntityType: "patient",
		InitialState: PatientRegistration,
	})
	path := []State{PatientWaiting, PatientTriage, PatientConsultation, PatientDiagnostics,
		PatientTreatment, PatientPharmacy, PatientBilling, PatientDischarge, PatientFollowUp}
	for _, to := range path {
		clk.advance(time.Minute)
		if err := e.Transition(ctx, TransitionParams{WorkflowID: id, ToState: to}); err != nil {
			t.Fatalf("Transition to %s: %v", to, err)
		}
	}
	rx := mustCreate(t, e, CreateParams{
		Type: TypePrescription, EntityID: "rx-1", EntityType: "prescription",
		InitialState: PrescriptionPrescribed,
	})
	clk.advance(time.Minute)
	if err := e.Transition(ctx, TransitionParams{WorkflowID: rx, ToState: PrescriptionPharmacyReview}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	appt := mustCreate(t, e, CreateParams{
		Type: TypeAppointment, EntityID: "a-1", EntityType: "appointment",
		InitialState: AppointmentScheduled,
	})
	clk.advance(time.Minute)
	if err := e.Transition(ctx, TransitionParams{WorkflowID: appt, ToState: AppointmentConfirmed}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	report, err := e.BottleneckAnalysis(ctx)
	if err != nil {
		t.Fatalf("BottleneckAnalysis: %v", err)
	}
	// 11 distinct (type, fromState) groups exist; the report caps at 10.
	if len(report.SlowestStates) != 10 {
		t.Errorf("slowest states = %d, want 10", len(report.SlowestStates))
	}
}
