package workflow

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/pkg/pagination"
)

// Handler exposes workflow operations over HTTP via Echo.
type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "physician", "nurse", "receptionist", "pharmacist")

	g := api.Group("", role)
	g.POST("/workflows", h.CreateWorkflow)
	g.GET("/workflows", h.ListWorkflows)
	g.GET("/workflows/stats", h.GetStats)
	g.GET("/workflows/bottlenecks", h.GetBottlenecks)
	g.GET("/workflows/:id", h.GetWorkflow)
	g.POST("/workflows/:id/transitions", h.TransitionWorkflow)
	g.POST("/workflows/:id/actions/:actionID", h.CompleteAction)
}

// httpError maps engine error kinds to HTTP status codes. All four are
// caller errors; anything else is a server failure.
func httpError(err error) error {
	var (
		notFound          *NotFoundError
		invalidTransition *InvalidTransitionError
		invalidState      *InvalidStateError
		actionNotFound    *ActionNotFoundError
	)
	switch {
	case errors.As(err, &notFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &invalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidState), errors.As(err, &actionNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type createRequest struct {
	Type         Type              `json:"type"`
	EntityID     string            `json:"entity_id"`
	EntityType   string            `json:"entity_type"`
	InitialState State             `json:"initial_state"`
	Metadata     map[string]string `json:"metadata"`
}

func (h *Handler) CreateWorkflow(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.EntityID == "" || req.EntityType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "entity_id and entity_type are required")
	}

	id, err := h.engine.CreateWorkflow(c.Request().Context(), CreateParams{
		Type:         req.Type,
		EntityID:     req.EntityID,
		EntityType:   req.EntityType,
		InitialState: req.InitialState,
		Metadata:     req.Metadata,
		UserID:       auth.UserIDFromContext(c.Request().Context()),
	})
	if err != nil {
		return httpError(err)
	}

	in, err := h.engine.GetWorkflow(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, in)
}

func (h *Handler) GetWorkflow(c echo.Context) error {
	in, err := h.engine.GetWorkflow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) ListWorkflows(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var (
		items []*Instance
		err   error
	)
	if entityID := c.QueryParam("entity_id"); entityID != "" {
		entityType := c.QueryParam("entity_type")
		if entityType == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "entity_type is required with entity_id")
		}
		items, err = h.engine.GetWorkflowsByEntity(ctx, entityID, entityType)
	} else {
		items, err = h.engine.GetActiveWorkflows(ctx)
	}
	if err != nil {
		return httpError(err)
	}

	total := len(items)
	if pg.Offset < len(items) {
		items = items[pg.Offset:]
	} else {
		items = nil
	}
	if len(items) > pg.Limit {
		items = items[:pg.Limit]
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionRequest struct {
	ToState State            `json:"to_state"`
	Action  string           `json:"action"`
	Data    *json.RawMessage `json:"data"`
}

func (h *Handler) TransitionWorkflow(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	err := h.engine.Transition(ctx, TransitionParams{
		WorkflowID: c.Param("id"),
		ToState:    req.ToState,
		Action:     req.Action,
		UserID:     auth.UserIDFromContext(ctx),
		Data:       req.Data,
	})
	if err != nil {
		return httpError(err)
	}

	in, err := h.engine.GetWorkflow(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, in)
}

type completeActionRequest struct {
	Data *json.RawMessage `json:"data"`
}

func (h *Handler) CompleteAction(c echo.Context) error {
	var req completeActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	err := h.engine.CompleteAction(ctx, ActionParams{
		WorkflowID: c.Param("id"),
		ActionID:   c.Param("actionID"),
		UserID:     auth.UserIDFromContext(ctx),
		Data:       req.Data,
	})
	if err != nil {
		return httpError(err)
	}

	in, err := h.engine.GetWorkflow(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, in)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.engine.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetBottlenecks(c echo.Context) error {
	report, err := h.engine.BottleneckAnalysis(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
