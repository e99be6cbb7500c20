package workflow

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSnapshotIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := &Instance{
		ID:           "wf-1",
		Type:         TypePatient,
		EntityID:     "pat-1",
		EntityType:   "patient",
		CurrentState: PatientRegistration,
		StartedAt:    time.Now().UTC(),
		Metadata:     map[string]string{"patient_name": "Jane Roe"},
	}
	if err := s.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	in.CurrentState = PatientPharmacy
	in.Metadata["patient_name"] = "changed"

	got, err := s.Get(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CurrentState != PatientRegistration {
		t.Errorf("stored state = %s, want %s", got.CurrentState, PatientRegistration)
	}
	if got.Metadata["patient_name"] != "Jane Roe" {
		t.Errorf("stored metadata = %q, want Jane Roe", got.Metadata["patient_name"])
	}

	// And mutating a read snapshot must not change the store either.
	got.Transitions = append(got.Transitions, Transition{From: PatientRegistration, To: PatientWaiting})
	again, _ := s.Get(ctx, "wf-1")
	if len(again.Transitions) != 0 {
		t.Errorf("transitions = %d, want 0", len(again.Transitions))
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get err = %v, want NotFoundError", err)
	}

	err = s.Update(ctx, &Instance{ID: "missing"})
	if !errors.As(err, &nf) {
		t.Fatalf("Update err = %v, want NotFoundError", err)
	}
}

func TestMemoryStoreListFilters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	done := time.Now().UTC()
	seed := []*Instance{
		{ID: "a", EntityID: "pat-1", EntityType: "patient"},
		{ID: "b", EntityID: "pat-1", EntityType: "patient", ActualCompletion: &done},
		{ID: "c", EntityID: "pat-2", EntityType: "patient"},
		{ID: "d", EntityID: "pat-1", EntityType: "invoice"},
	}
	for _, in := range seed {
		if err := s.Create(ctx, in); err != nil {
			t.Fatalf("Create(%s): %v", in.ID, err)
		}
	}

	all, _ := s.List(ctx)
	if len(all) != 4 {
		t.Errorf("List = %d, want 4", len(all))
	}

	byEntity, _ := s.ListByEntity(ctx, "pat-1", "patient")
	if len(byEntity) != 2 {
		t.Errorf("ListByEntity = %d, want 2", len(byEntity))
	}

	active, _ := s.ListActive(ctx)
	if len(active) != 3 {
		t.Errorf("ListActive = %d, want 3", len(active))
	}
}
