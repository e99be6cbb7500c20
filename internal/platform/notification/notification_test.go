package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateRender(t *testing.T) {
	e := NewTemplateEngine()

	title, body, err := e.Render("patient-arrival", map[string]string{"patient_name": "Jane Roe"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if title != "Patient Arrived" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(body, "Jane Roe") {
		t.Errorf("body = %q, want patient name substituted", body)
	}

	// Missing keys stay as placeholders.
	_, body, err = e.Render("appointment-reminder", map[string]string{"patient_name": "Jane Roe"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(body, "{{date}}") {
		t.Errorf("body = %q, want unreplaced {{date}}", body)
	}

	if _, _, err := e.Render("nope", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateRegisterOverride(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{
		ID:      "patient-arrival",
		Title:   "Arrival",
		Body:    "{{patient_name}} is here",
		Channel: ChannelSMS,
	})

	title, _, err := e.Render("patient-arrival", map[string]string{"patient_name": "Jane"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if title != "Arrival" {
		t.Errorf("title = %q, want override", title)
	}
	if e.channel("patient-arrival") != ChannelSMS {
		t.Error("channel should follow the override")
	}
}

func TestCenterInAppLifecycle(t *testing.T) {
	c := NewCenter(nil, nil, NewTemplateEngine())
	ctx := context.Background()

	n := &Notification{
		Type:        "patient_arrival",
		RecipientID: "doc-1",
		Title:       "Patient Arrived",
		Message:     "Jane Roe has arrived",
	}
	if err := c.Create(ctx, n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == "" || n.Status != "sent" || n.Channel != ChannelInApp {
		t.Errorf("notification = %+v", n)
	}

	unread, err := c.ListByRecipient(ctx, "doc-1", true, 10)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}

	if err := c.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, _ = c.ListByRecipient(ctx, "doc-1", true, 10)
	if len(unread) != 0 {
		t.Errorf("unread after read = %d, want 0", len(unread))
	}
	all, _ := c.ListByRecipient(ctx, "doc-1", false, 10)
	if len(all) != 1 {
		t.Errorf("all = %d, want 1", len(all))
	}
}

func TestCenterEmailDelivery(t *testing.T) {
	email := &MockEmailSender{}
	c := NewCenter(email, nil, NewTemplateEngine())
	ctx := context.Background()

	n, err := c.CreateFromTemplate(ctx, "appointment-reminder", map[string]string{
		"patient_name": "Jane Roe",
		"date":         "2025-03-12",
		"time":         "10:30",
		"provider":     "Dr. Lee",
	}, "jane@example.com")
	if err != nil {
		t.Fatalf("CreateFromTemplate: %v", err)
	}
	if n.Channel != ChannelEmail || n.Status != "sent" {
		t.Errorf("notification = %+v", n)
	}

	calls := email.Calls()
	if len(calls) != 1 {
		t.Fatalf("email calls = %d, want 1", len(calls))
	}
	if calls[0].To != "jane@example.com" || !strings.Contains(calls[0].Body, "Dr. Lee") {
		t.Errorf("call = %+v", calls[0])
	}
}

func TestCenterRetry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	c := NewCenter(email, nil, NewTemplateEngine())
	ctx := context.Background()

	n := &Notification{Channel: ChannelEmail, RecipientID: "jane@example.com", Title: "Hi", Message: "Hello"}
	if err := c.Create(ctx, n); err == nil {
		t.Fatal("expected delivery error")
	}
	if n.Status != "failed" || n.Error != "smtp down" {
		t.Errorf("notification = %+v", n)
	}

	// Retrying a sent notification is rejected; retrying a failed one works
	// once the sender recovers.
	email.ShouldFail = false
	if err := c.Retry(ctx, n.ID); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	got, _ := c.Get(ctx, n.ID)
	if got.Status != "sent" || got.Error != "" {
		t.Errorf("after retry = %+v", got)
	}
	if err := c.Retry(ctx, n.ID); err == nil {
		t.Error("retry of sent notification should fail")
	}
}

func TestCenterStats(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	c := NewCenter(email, nil, NewTemplateEngine())
	ctx := context.Background()

	_ = c.Create(ctx, &Notification{RecipientID: "doc-1", Message: "a"})
	_ = c.Create(ctx, &Notification{RecipientID: "doc-1", Message: "b"})
	_ = c.Create(ctx, &Notification{Channel: ChannelEmail, RecipientID: "x@y.z", Message: "c"})

	stats := c.Stats(ctx)
	if stats["sent"] != 2 || stats["failed"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}
