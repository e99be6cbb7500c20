package workflow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Notification is the payload handed to the notification collaborator.
type Notification struct {
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	RecipientID string            `json:"recipient_id"`
	Data        map[string]string `json:"data,omitempty"`
}

// Notification types emitted by the engine.
const (
	NotifyPatientArrival     = "patient_arrival"
	NotifyConsultationReady  = "consultation_ready"
	NotifyPrescriptionReady  = "prescription_ready"
	NotifyReadyToAdvance     = "workflow_ready_to_advance"
)

// AuditEvent is the payload handed to the audit collaborator.
type AuditEvent struct {
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id"`
	Data      map[string]string `json:"data,omitempty"`
}

// Audit event types emitted by the engine.
const (
	AuditWorkflowCreated    = "workflow_created"
	AuditWorkflowTransition = "workflow_transition"
	AuditActionCompleted    = "workflow_action_completed"
)

// Notifier delivers domain notifications. Delivery is best-effort; errors are
// logged and never reach the caller of a workflow operation.
type Notifier interface {
	CreateNotification(ctx context.Context, n Notification) error
}

// Auditor records audit log entries, same contract as Notifier.
type Auditor interface {
	Log(ctx context.Context, ev AuditEvent) error
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) CreateNotification(context.Context, Notification) error { return nil }

// NopAuditor discards audit events.
type NopAuditor struct{}

func (NopAuditor) Log(context.Context, AuditEvent) error { return nil }

type outboundEvent struct {
	notification *Notification
	audit        *AuditEvent
}

// dispatcher decouples collaborator calls from the synchronous mutation path.
// Events are queued on a buffered channel and delivered by a background
// goroutine, so a slow or failing backend cannot stall or fail a transition.
type dispatcher struct {
	notifier Notifier
	auditor  Auditor
	logger   zerolog.Logger

	ch        chan outboundEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
}

const dispatchBuffer = 1024

func newDispatcher(notifier Notifier, auditor Auditor, logger zerolog.Logger) *dispatcher {
	d := &dispatcher{
		notifier: notifier,
		auditor:  auditor,
		logger:   logger,
		ch:       make(chan outboundEvent, dispatchBuffer),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if ev.audit != nil {
			if err := d.auditor.Log(ctx, *ev.audit); err != nil {
				d.logger.Error().Err(err).Str("event_type", ev.audit.EventType).Msg("audit log failed")
			}
		}
		if ev.notification != nil {
			if err := d.notifier.CreateNotification(ctx, *ev.notification); err != nil {
				d.logger.Error().Err(err).Str("type", ev.notification.Type).Msg("notification delivery failed")
			}
		}
		cancel()
	}
}

// publish enqueues an event without blocking. If the queue is full the event
// is dropped with a warning; correctness of the workflow mutation is already
// committed at this point.
func (d *dispatcher) publish(ev outboundEvent) {
	select {
	case d.ch <- ev:
	default:
		d.logger.Warn().Msg("outbound event queue full, dropping event")
	}
}

// close drains the queue and stops the delivery goroutine.
func (d *dispatcher) close() {
	d.closeOnce.Do(func() {
		close(d.ch)
	})
	d.wg.Wait()
}

// stateChangeNotification maps a patient workflow transition target to the
// notification the original intake flow sends, if any.
func stateChangeNotification(in *Instance, to State) *Notification {
	if in.Type != TypePatient {
		return nil
	}
	patientName := in.Metadata["patient_name"]
	if patientName == "" {
		patientName = "Patient"
	}
	switch to {
	case PatientWaiting:
		return &Notification{
			Type:        NotifyPatientArrival,
			Title:       "Patient Arrived",
			Message:     patientName + " has arrived and is in the waiting room",
			RecipientID: in.Metadata["doctor_id"],
			Data:        map[string]string{"workflow_id": in.ID, "entity_id": in.EntityID},
		}
	case PatientConsultation:
		return &Notification{
			Type:        NotifyConsultationReady,
			Title:       "Consultation Ready",
			Message:     patientName + " is ready for consultation",
			RecipientID: in.Metadata["doctor_id"],
			Data:        map[string]string{"workflow_id": in.ID, "entity_id": in.EntityID},
		}
	case PatientPharmacy:
		return &Notification{
			Type:        NotifyPrescriptionReady,
			Title:       "Prescription Ready",
			Message:     "Prescription for " + patientName + " is ready for dispensing",
			RecipientID: in.Metadata["pharmacist_id"],
			Data: map[string]string{
				"workflow_id":     in.ID,
				"entity_id":       in.EntityID,
				"prescription_id": in.Metadata["prescription_id"],
			},
		}
	}
	return nil
}

// readyToAdvanceNotification is sent to the acting user once every required
// action of the current state is complete.
func readyToAdvanceNotification(in *Instance, def StateDefinition, userID string) *Notification {
	next := make([]string, len(def.AllowedNextStates))
	for i, s := range def.AllowedNextStates {
		next[i] = string(s)
	}
	return &Notification{
		Type:        NotifyReadyToAdvance,
		Title:       "Workflow Ready for Next Step",
		Message:     "All required actions completed for " + def.Name,
		RecipientID: userID,
		Data: map[string]string{
			"workflow_id":   in.ID,
			"current_state": string(in.CurrentState),
			"next_states":   strings.Join(next, ","),
		},
	}
}
