package request

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/otms/otms/internal/platform/auth"
	"github.com/otms/otms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("coordinator", "surgeon", "physician", "nurse"))
	readGroup.GET("/surgery-requests", h.List)
	readGroup.GET("/surgery-requests/:id", h.Get)

	clinicianGroup := api.Group("", auth.RequireRole("coordinator", "surgeon", "physician"))
	clinicianGroup.POST("/surgery-requests", h.Create)
	clinicianGroup.POST("/surgery-requests/:id/transition", h.Transition)
	clinicianGroup.PUT("/surgery-requests/:id/assessment", h.UpdateAssessment)
}

func httpError(err error) *echo.HTTPError {
	var transition *TransitionError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &transition), errors.Is(err, ErrIncompleteChecklist), errors.Is(err, ErrNotBookable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Create(c echo.Context) error {
	var r SurgeryRequest
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), &r, actor); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(),
		Status(c.QueryParam("status")), Urgency(c.QueryParam("urgency")), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type transitionBody struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body transitionBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	r, err := h.svc.Transition(c.Request().Context(), id, body.Status, actor, body.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

type assessmentBody struct {
	PreOpAssessment   *string  `json:"pre_op_assessment"`
	RequiredResources []string `json:"required_resources"`
	ConsentObtained   bool     `json:"consent_obtained"`
}

func (h *Handler) UpdateAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body assessmentBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateAssessment(c.Request().Context(), id,
		body.PreOpAssessment, body.RequiredResources, body.ConsentObtained)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}
