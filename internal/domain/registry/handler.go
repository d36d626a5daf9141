package registry

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medtrace/medtrace/internal/platform/telemetry"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/manufacturer-mappings", h.RegisterMapping)
	api.GET("/manufacturer-mappings", h.ListMappings)
	api.GET("/manufacturer-mappings/:name", h.GetMapping)
}

type registerMappingRequest struct {
	BusinessName string `json:"businessName"`
	OrgID        string `json:"orgId"`
}

// httpError maps the registry failure taxonomy onto transport codes;
// anything outside it (ledger failures) is a 500.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrMappingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) RegisterMapping(c echo.Context) error {
	var req registerMappingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Register(c.Request().Context(), req.BusinessName, req.OrgID)
	telemetry.RecordOperation("RegisterManufacturerMapping", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMapping(c echo.Context) error {
	m, err := h.svc.Resolve(c.Request().Context(), c.Param("name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMappings(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*ManufacturerMapping{}
	}
	return c.JSON(http.StatusOK, items)
}
