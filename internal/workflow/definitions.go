package workflow

// Patient workflow states.
const (
	PatientRegistration State = "registration"
	PatientWaiting      State = "waiting"
	PatientTriage       State = "triage"
	PatientConsultation State = "consultation"
	PatientDiagnostics  State = "diagnostics"
	PatientTreatment    State = "treatment"
	PatientPharmacy     State = "pharmacy"
	PatientBilling      State = "billing"
	PatientDischarge    State = "discharge"
	PatientFollowUp     State = "follow_up"
)

// Prescription workflow states.
const (
	PrescriptionPrescribed     State = "prescribed"
	PrescriptionPharmacyReview State = "pharmacy_review"
	PrescriptionDispensing     State = "dispensing"
	PrescriptionReadyForPickup State = "ready_for_pickup"
	PrescriptionDispensed      State = "dispensed"
	PrescriptionCompleted      State = "completed"
)

// Appointment workflow states.
const (
	AppointmentScheduled   State = "scheduled"
	AppointmentConfirmed   State = "confirmed"
	AppointmentCheckedIn   State = "checked_in"
	AppointmentInProgress  State = "in_progress"
	AppointmentCompleted   State = "completed"
	AppointmentCancelled   State = "cancelled"
	AppointmentNoShow      State = "no_show"
	AppointmentRescheduled State = "rescheduled"
)

// PatientStates returns the state set for the patient visit workflow, from
// registration through discharge and follow-up.
func PatientStates() []StateDefinition {
	return []StateDefinition{
		{
			ID:                       PatientRegistration,
			Name:                     "Patient Registration",
			Description:              "Initial patient registration and data collection",
			ProgressWeight:           10,
			EstimatedDurationMinutes: 15,
			AllowedNextStates:        []State{PatientWaiting, PatientTriage},
			RequiredActions: []ActionDefinition{
				{ID: "personal_info", Name: "Personal Information", Description: "Collect patient personal details", Required: true},
				{ID: "insurance_info", Name: "Insurance Information", Description: "Verify insurance coverage", Required: true},
				{ID: "medical_history", Name: "Medical History", Description: "Record patient medical history", Required: false},
			},
		},
		{
			ID:                PatientWaiting,
			Name:              "Waiting Room",
			Description:       "Patient waiting for consultation",
			ProgressWeight:    20,
			AllowedNextStates: []State{PatientTriage, PatientConsultation},
			RequiredActions: []ActionDefinition{
				{ID: "check_in", Name: "Check-in", Description: "Confirm patient arrival", Required: true},
			},
		},
		{
			ID:                       PatientTriage,
			Name:                     "Triage Assessment",
			Description:              "Initial medical assessment and prioritization",
			ProgressWeight:           30,
			EstimatedDurationMinutes: 10,
			AllowedNextStates:        []State{PatientConsultation, PatientWaiting},
			RequiredActions: []ActionDefinition{
				{ID: "vital_signs", Name: "Vital Signs", Description: "Record vital signs", Required: true},
				{ID: "chief_complaint", Name: "Chief Complaint", Description: "Document primary concern", Required: true},
				{ID: "priority_assessment", Name: "Priority Assessment", Description: "Assign triage priority", Required: true},
			},
		},
		{
			ID:                       PatientConsultation,
			Name:                     "Doctor Consultation",
			Description:              "Medical consultation with doctor",
			ProgressWeight:           50,
			EstimatedDurationMinutes: 30,
			AllowedNextStates:        []State{PatientDiagnostics, PatientTreatment, PatientPharmacy, PatientDischarge},
			RequiredActions: []ActionDefinition{
				{ID: "examination", Name: "Physical Examination", Description: "Conduct physical examination", Required: true},
				{ID: "diagnosis", Name: "Diagnosis", Description: "Document diagnosis", Required: true},
				{ID: "treatment_plan", Name: "Treatment Plan", Description: "Create treatment plan", Required: true},
			},
		},
		{
			ID:                       PatientDiagnostics,
			Name:                     "Diagnostic Tests",
			Description:              "Laboratory tests and imaging",
			ProgressWeight:           60,
			EstimatedDurationMinutes: 45,
			AllowedNextStates:        []State{PatientConsultation, PatientTreatment},
			RequiredActions: []ActionDefinition{
				{ID: "lab_tests", Name: "Laboratory Tests", Description: "Complete lab tests", Required: false},
				{ID: "imaging", Name: "Medical Imaging", Description: "Complete imaging studies", Required: false},
				{ID: "results_review", Name: "Results Review", Description: "Review test results", Required: true},
			},
		},
		{
			ID:                       PatientTreatment,
			Name:                     "Treatment",
			Description:              "Medical treatment and procedures",
			ProgressWeight:           70,
			EstimatedDurationMinutes: 60,
			AllowedNextStates:        []State{PatientPharmacy, PatientBilling, PatientDischarge},
			RequiredActions: []ActionDefinition{
				{ID: "procedure", Name: "Medical Procedure", Description: "Perform medical procedure", Required: false},
				{ID: "medication_admin", Name: "Medication Administration", Description: "Administer medications", Required: false},
				{ID: "treatment_notes", Name: "Treatment Notes", Description: "Document treatment provided", Required: true},
			},
		},
		{
			ID:                       PatientPharmacy,
			Name:                     "Pharmacy",
			Description:              "Prescription dispensing",
			ProgressWeight:           80,
			EstimatedDurationMinutes: 20,
			AllowedNextStates:        []State{PatientBilling, PatientDischarge},
			RequiredActions: []ActionDefinition{
				{ID: "prescription_review", Name: "Prescription Review", Description: "Review prescription for accuracy", Required: true},
				{ID: "medication_dispensing", Name: "Medication Dispensing", Description: "Dispense medications", Required: true},
				{ID: "patient_counseling", Name: "Patient Counseling", Description: "Counsel patient on medication use", Required: true},
			},
		},
		{
			ID:                       PatientBilling,
			Name:                     "Billing & Payment",
			Description:              "Process billing and payment",
			ProgressWeight:           90,
			EstimatedDurationMinutes: 10,
			AllowedNextStates:        []State{PatientDischarge},
			RequiredActions: []ActionDefinition{
				{ID: "invoice_generation", Name: "Invoice Generation", Description: "Generate patient invoice", Required: true},
				{ID: "payment_processing", Name: "Payment Processing", Description: "Process payment", Required: true},
				{ID: "insurance_claim", Name: "Insurance Claim", Description: "Submit insurance claim", Required: false},
			},
		},
		{
			ID:                       PatientDischarge,
			Name:                     "Discharge",
			Description:              "Patient discharge and follow-up planning",
			ProgressWeight:           95,
			EstimatedDurationMinutes: 15,
			AllowedNextStates:        []State{PatientFollowUp},
			RequiredActions: []ActionDefinition{
				{ID: "discharge_summary", Name: "Discharge Summary", Description: "Complete discharge summary", Required: true},
				{ID: "discharge_instructions", Name: "Discharge Instructions", Description: "Provide discharge instructions", Required: true},
				{ID: "follow_up_scheduling", Name: "Follow-up Scheduling", Description: "Schedule follow-up appointment", Required: false},
			},
		},
		{
			ID:             PatientFollowUp,
			Name:           "Follow-up",
			Description:    "Follow-up care and monitoring",
			ProgressWeight: 100,
			RequiredActions: []ActionDefinition{
				{ID: "follow_up_complete", Name: "Follow-up Complete", Description: "Follow-up care completed", Required: true},
			},
		},
	}
}

// PrescriptionStates returns the state set for the pharmacy dispensing
// workflow.
func PrescriptionStates() []StateDefinition {
	return []StateDefinition{
		{
			ID:                PrescriptionPrescribed,
			Name:              "Prescribed",
			Description:       "Prescription issued by the doctor",
			ProgressWeight:    10,
			AllowedNextStates: []State{PrescriptionPharmacyReview},
			RequiredActions: []ActionDefinition{
				{ID: "prescription_entry", Name: "Prescription Entry", Description: "Enter prescription into the pharmacy queue", Required: true},
			},
		},
		{
			ID:                       PrescriptionPharmacyReview,
			Name:                     "Pharmacy Review",
			Description:              "Pharmacist review for interactions and dosage",
			ProgressWeight:           30,
			EstimatedDurationMinutes: 10,
			AllowedNextStates:        []State{PrescriptionDispensing},
			RequiredActions: []ActionDefinition{
				{ID: "interaction_check", Name: "Interaction Check", Description: "Check for drug interactions", Required: true},
				{ID: "dosage_verification", Name: "Dosage Verification", Description: "Verify prescribed dosage", Required: true},
			},
		},
		{
			ID:                       PrescriptionDispensing,
			Name:                     "Dispensing",
			Description:              "Medications being prepared",
			ProgressWeight:           60,
			EstimatedDurationMinutes: 15,
			AllowedNextStates:        []State{PrescriptionReadyForPickup},
			RequiredActions: []ActionDefinition{
				{ID: "stock_pick", Name: "Stock Pick", Description: "Pick medications from stock", Required: true},
				{ID: "labeling", Name: "Labeling", Description: "Label dispensed medications", Required: true},
			},
		},
		{
			ID:                PrescriptionReadyForPickup,
			Name:              "Ready for Pickup",
			Description:       "Medications ready at the counter",
			ProgressWeight:    80,
			AllowedNextStates: []State{PrescriptionDispensed},
			RequiredActions: []ActionDefinition{
				{ID: "pickup_notification", Name: "Pickup Notification", Description: "Notify patient that medications are ready", Required: true},
			},
		},
		{
			ID:                PrescriptionDispensed,
			Name:              "Dispensed",
			Description:       "Medications handed to the patient",
			ProgressWeight:    90,
			AllowedNextStates: []State{PrescriptionCompleted},
			RequiredActions: []ActionDefinition{
				{ID: "counseling", Name: "Counseling", Description: "Counsel patient on medication use", Required: true},
				{ID: "pickup_confirmation", Name: "Pickup Confirmation", Description: "Record patient pickup", Required: true},
			},
		},
		{
			ID:             PrescriptionCompleted,
			Name:           "Completed",
			Description:    "Dispensing workflow closed",
			ProgressWeight: 100,
		},
	}
}

// AppointmentStates returns the state set for the appointment lifecycle.
// Cancelled, no-show and rescheduled are alternative terminal outcomes.
func AppointmentStates() []StateDefinition {
	return []StateDefinition{
		{
			ID:                AppointmentScheduled,
			Name:              "Scheduled",
			Description:       "Appointment booked",
			ProgressWeight:    10,
			AllowedNextStates: []State{AppointmentConfirmed, AppointmentCancelled, AppointmentRescheduled},
			RequiredActions: []ActionDefinition{
				{ID: "slot_booking", Name: "Slot Booking", Description: "Reserve the appointment slot", Required: true},
			},
		},
		{
			ID:                AppointmentConfirmed,
			Name:              "Confirmed",
			Description:       "Patient confirmed attendance",
			ProgressWeight:    30,
			AllowedNextStates: []State{AppointmentCheckedIn, AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled},
			RequiredActions: []ActionDefinition{
				{ID: "reminder_sent", Name: "Reminder Sent", Description: "Send appointment reminder", Required: false},
			},
		},
		{
			ID:                AppointmentCheckedIn,
			Name:              "Checked In",
			Description:       "Patient arrived at the clinic",
			ProgressWeight:    50,
			AllowedNextStates: []State{AppointmentInProgress},
			RequiredActions: []ActionDefinition{
				{ID: "arrival_confirmation", Name: "Arrival Confirmation", Description: "Confirm patient arrival at reception", Required: true},
			},
		},
		{
			ID:                       AppointmentInProgress,
			Name:                     "In Progress",
			Description:              "Consultation under way",
			ProgressWeight:           70,
			EstimatedDurationMinutes: 30,
			AllowedNextStates:        []State{AppointmentCompleted},
			RequiredActions: []ActionDefinition{
				{ID: "visit_notes", Name: "Visit Notes", Description: "Record consultation notes", Required: true},
			},
		},
		{
			ID:             AppointmentCompleted,
			Name:           "Completed",
			Description:    "Appointment finished",
			ProgressWeight: 100,
		},
		{
			ID:             AppointmentCancelled,
			Name:           "Cancelled",
			Description:    "Appointment cancelled",
			ProgressWeight: 100,
		},
		{
			ID:             AppointmentNoShow,
			Name:           "No Show",
			Description:    "Patient did not arrive",
			ProgressWeight: 100,
		},
		{
			ID:             AppointmentRescheduled,
			Name:           "Rescheduled",
			Description:    "Appointment moved to a new slot",
			ProgressWeight: 100,
		},
	}
}
