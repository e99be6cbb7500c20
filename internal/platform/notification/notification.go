// Package notification provides the clinic's notification center: in-app
// notifications with read tracking, plus Email/SMS delivery with template
// rendering, retry logic, and Echo HTTP handlers.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Channel represents how a notification is delivered.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Notification represents a single outbound notification. In-app
// notifications are stored until the recipient reads them; email and SMS are
// handed to the configured sender.
type Notification struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Type         string            `json:"type,omitempty"`
	RecipientID  string            `json:"recipient_id"`
	Title        string            `json:"title,omitempty"`
	Message      string            `json:"message"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	Read         bool              `json:"read"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
}

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "patient-arrival",
			Name:    "Patient Arrival",
			Title:   "Patient Arrived",
			Body:    "{{patient_name}} has arrived and is in the waiting room.",
			Channel: ChannelInApp,
		},
		{
			ID:      "consultation-ready",
			Name:    "Consultation Ready",
			Title:   "Consultation Ready",
			Body:    "{{patient_name}} is ready for consultation.",
			Channel: ChannelInApp,
		},
		{
			ID:      "prescription-ready",
			Name:    "Prescription Ready",
			Title:   "Prescription Ready",
			Body:    "Prescription for {{patient_name}} is ready for dispensing.",
			Channel: ChannelInApp,
		},
		{
			ID:      "appointment-reminder",
			Name:    "Appointment Reminder",
			Title:   "Appointment Reminder for {{patient_name}}",
			Body:    "Dear {{patient_name}}, this is a reminder of your appointment on {{date}} at {{time}} with {{provider}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "prescription-pickup",
			Name:    "Prescription Pickup",
			Title:   "Your Prescription Is Ready",
			Body:    "Dear {{patient_name}}, your prescription for {{medication}} is ready for pickup at {{pharmacy}}.",
			Channel: ChannelEmail,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (title, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	title = t.Title
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		title = strings.ReplaceAll(title, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return title, body, nil
}

func (e *TemplateEngine) channel(templateID string) Channel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if t, ok := e.templates[templateID]; ok {
		return t.Channel
	}
	return ChannelInApp
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records a single call to SendSMS.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender is a test double for SMSSender.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

// SendSMS records the call and optionally returns an error.
func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Center orchestrates creation, delivery, storage, and retrieval of
// notifications.
type Center struct {
	emailSender   EmailSender
	smsSender     SMSSender
	templates     *TemplateEngine
	mu            sync.RWMutex
	notifications map[string]*Notification
}

// NewCenter constructs a notification Center. The email and SMS senders may
// be nil when only in-app notifications are used.
func NewCenter(email EmailSender, sms SMSSender, tpl *TemplateEngine) *Center {
	return &Center{
		emailSender:   email,
		smsSender:     sms,
		templates:     tpl,
		notifications: make(map[string]*Notification),
	}
}

// Create delivers a notification through its channel, assigns an ID and
// timestamps, and persists the result in-memory. In-app notifications are
// always stored unread; email and SMS record the sender outcome.
func (c *Center) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Channel == "" {
		n.Channel = ChannelInApp
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = "pending"

	sendErr := c.deliver(ctx, n)

	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	c.mu.Lock()
	c.notifications[n.ID] = n
	c.mu.Unlock()

	return sendErr
}

func (c *Center) deliver(ctx context.Context, n *Notification) error {
	switch n.Channel {
	case ChannelInApp:
		return nil
	case ChannelEmail:
		if c.emailSender == nil {
			return errors.New("no email sender configured")
		}
		return c.emailSender.SendEmail(ctx, n.RecipientID, n.Title, n.Message)
	case ChannelSMS:
		if c.smsSender == nil {
			return errors.New("no sms sender configured")
		}
		return c.smsSender.SendSMS(ctx, n.RecipientID, n.Message)
	default:
		return fmt.Errorf("unsupported notification channel: %s", n.Channel)
	}
}

// CreateFromTemplate renders a template and creates the resulting
// notification on the template's channel.
func (c *Center) CreateFromTemplate(ctx context.Context, templateID string, data map[string]string, recipientID string) (*Notification, error) {
	title, body, err := c.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Channel:      c.templates.channel(templateID),
		RecipientID:  recipientID,
		Title:        title,
		Message:      body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	if err := c.Create(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by ID.
func (c *Center) Get(_ context.Context, id string) (*Notification, error) {
	c.mu.RLock()
	n, ok := c.notifications[id]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns notifications for a given recipient, newest first,
// up to limit. Pass unreadOnly to filter out read notifications.
func (c *Center) ListByRecipient(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]*Notification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []*Notification
	for _, n := range c.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MarkRead marks an in-app notification as read.
func (c *Center) MarkRead(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.notifications[id]
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	n.Read = true
	return nil
}

// Retry re-sends a failed notification. Returns an error if the notification
// is not in "failed" status.
func (c *Center) Retry(ctx context.Context, id string) error {
	c.mu.RLock()
	n, ok := c.notifications[id]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != "failed" {
		return fmt.Errorf("notification %q is not in failed status (current: %s)", id, n.Status)
	}

	sendErr := c.deliver(ctx, n)

	c.mu.Lock()
	if sendErr != nil {
		n.Status = "failed"
		n.Error = sendErr.Error()
	} else {
		n.Status = "sent"
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	c.mu.Unlock()

	return sendErr
}

// Stats returns counts of notifications grouped by status.
func (c *Center) Stats(_ context.Context) map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range c.notifications {
		stats[n.Status]++
	}
	return stats
}

// Handler exposes notification operations over HTTP via Echo.
type Handler struct {
	center *Center
}

// NewHandler creates a notification Handler.
func NewHandler(center *Center) *Handler {
	return &Handler{center: center}
}

// RegisterRoutes registers all notification routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/notifications", h.HandleCreate)
	g.POST("/notifications/send-template", h.HandleSendTemplate)
	g.GET("/notifications/stats", h.HandleStats)
	g.GET("/notifications/:id", h.HandleGet)
	g.GET("/notifications", h.HandleList)
	g.POST("/notifications/:id/read", h.HandleMarkRead)
	g.POST("/notifications/:id/retry", h.HandleRetry)
}

// createRequest is the JSON body for POST /notifications.
type createRequest struct {
	Channel     Channel           `json:"channel"`
	Type        string            `json:"type"`
	RecipientID string            `json:"recipient_id"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data"`
}

// HandleCreate handles POST /notifications.
func (h *Handler) HandleCreate(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.RecipientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient_id is required"})
	}

	n := &Notification{
		Channel:     req.Channel,
		Type:        req.Type,
		RecipientID: req.RecipientID,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
	}

	// Return the notification even on delivery failure so the caller can see
	// the ID and error.
	_ = h.center.Create(c.Request().Context(), n)
	return c.JSON(http.StatusCreated, n)
}

// sendTemplateRequest is the JSON body for POST /notifications/send-template.
type sendTemplateRequest struct {
	TemplateID  string            `json:"template_id"`
	RecipientID string            `json:"recipient_id"`
	Data        map[string]string `json:"data"`
}

// HandleSendTemplate handles POST /notifications/send-template.
func (h *Handler) HandleSendTemplate(c echo.Context) error {
	var req sendTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n, err := h.center.CreateFromTemplate(c.Request().Context(), req.TemplateID, req.Data, req.RecipientID)
	if err != nil && n == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, n)
}

// HandleGet handles GET /notifications/:id.
func (h *Handler) HandleGet(c echo.Context) error {
	n, err := h.center.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, n)
}

// HandleList handles GET /notifications?recipient_id=...&unread=true
func (h *Handler) HandleList(c echo.Context) error {
	recipientID := c.QueryParam("recipient_id")
	if recipientID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient_id query parameter is required"})
	}
	unreadOnly := c.QueryParam("unread") == "true"

	list, err := h.center.ListByRecipient(c.Request().Context(), recipientID, unreadOnly, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

// HandleMarkRead handles POST /notifications/:id/read.
func (h *Handler) HandleMarkRead(c echo.Context) error {
	id := c.Param("id")
	if err := h.center.MarkRead(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	n, _ := h.center.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

// HandleRetry handles POST /notifications/:id/retry.
func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.center.Retry(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	n, _ := h.center.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

// HandleStats handles GET /notifications/stats.
func (h *Handler) HandleStats(c echo.Context) error {
	stats := h.center.Stats(c.Request().Context())
	return c.JSON(http.StatusOK, stats)
}
