package progress

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/otms/otms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("coordinator", "surgeon", "physician", "nurse"))
	g.GET("/surgery-requests/:id/progress", h.History)
	g.POST("/surgery-requests/:id/progress", h.RecordNote)
}

type noteBody struct {
	Status string   `json:"status"`
	Notes  string   `json:"notes"`
	Tags   []string `json:"tags"`
}

// RecordNote files a clinical progress note outside the state machine, for
// example an intra-operative complication. Status transitions themselves are
// recorded by the registry, not through this endpoint.
func (h *Handler) RecordNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body noteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.RecordTagged(c.Request().Context(), id, body.Status, body.Notes, actor, body.Tags); err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	history, err := h.svc.History(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if history == nil {
		history = []*SurgeryProgress{}
	}
	return c.JSON(http.StatusOK, history)
}
