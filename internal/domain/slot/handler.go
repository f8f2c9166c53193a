package slot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/otms/otms/internal/domain/catalog"
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
	readGroup := api.Group("", auth.RequireRole("coordinator", "surgeon", "physician", "nurse"))
	readGroup.GET("/slots", h.ListByDate)
	readGroup.GET("/slots/:id", h.Get)
	readGroup.GET("/slots/available", h.FindAvailable)

	writeGroup := api.Group("", auth.RequireRole("coordinator"))
	writeGroup.POST("/slots/book", h.Book)
	writeGroup.POST("/slots/block", h.Block)
	writeGroup.POST("/slots/:id/release", h.Release)
}

func httpError(c echo.Context, err error) error {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":    conflict.Error(),
			"slot_ids": conflict.SlotIDs,
		})
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, request.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAvailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, request.ErrNotBookable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Book(c echo.Context) error {
	var in BookSlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.UserIDFromContext(c.Request().Context())
	sl, err := h.svc.BookSlot(c.Request().Context(), in, actor)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, sl)
}

func (h *Handler) Block(c echo.Context) error {
	var in BlockSlotInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sl, err := h.svc.BlockSlot(c.Request().Context(), in)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, sl)
}

func (h *Handler) Release(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.ReleaseSlot(c.Request().Context(), id); err != nil {
		return httpError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sl, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, sl)
}

func (h *Handler) ListByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	slots, err := h.svc.ListByDate(c.Request().Context(), date)
	if err != nil {
		return httpError(c, err)
	}
	if slots == nil {
		slots = []*OTSlot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) FindAvailable(c echo.Context) error {
	date := c.QueryParam("date")
	kind := catalog.Kind(c.QueryParam("kind"))
	if kind == "" {
		kind = catalog.KindRoom
	}
	duration, err := strconv.Atoi(c.QueryParam("duration_minutes"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "duration_minutes must be an integer")
	}
	candidates, err := h.svc.FindAvailable(c.Request().Context(), kind, date, duration)
	if err != nil {
		return httpError(c, err)
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return c.JSON(http.StatusOK, candidates)
}
