package checklist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/otms/otms/internal/domain/request"
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
	g.POST("/checklists", h.Create)
	g.GET("/checklists/:id", h.Get)
	g.GET("/surgery-requests/:id/checklist", h.GetByRequest)
	g.POST("/checklists/:id/items/:index/check", h.CheckItem)
	g.POST("/checklists/:id/items/:index/uncheck", h.UncheckItem)
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, request.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type createBody struct {
	RequestID uuid.UUID `json:"request_id"`
	Items     []Item    `json:"items"`
}

func (h *Handler) Create(c echo.Context) error {
	var body createBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := h.svc.CreateChecklist(c.Request().Context(), body.RequestID, body.Items)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cl, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) GetByRequest(c echo.Context) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request id")
	}
	cl, err := h.svc.GetByRequest(c.Request().Context(), requestID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) CheckItem(c echo.Context) error {
	return h.toggle(c, true)
}

func (h *Handler) UncheckItem(c echo.Context) error {
	return h.toggle(c, false)
}

func (h *Handler) toggle(c echo.Context, checked bool) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item index")
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	var cl *OTChecklist
	if checked {
		cl, err = h.svc.CheckItem(c.Request().Context(), id, index, actor)
	} else {
		cl, err = h.svc.UncheckItem(c.Request().Context(), id, index, actor)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cl)
}
