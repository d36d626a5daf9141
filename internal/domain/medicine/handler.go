package medicine

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medtrace/medtrace/internal/platform/telemetry"
	"github.com/medtrace/medtrace/pkg/pagination"
)

// Handler provides HTTP handlers for the medicine supply chain.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all medicine routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/medicines", h.RegisterMedicine)
	api.GET("/medicines", h.ListMedicines)
	api.GET("/medicines/flagged", h.ListFlagged)
	api.GET("/medicines/:id", h.GetMedicine)
	api.DELETE("/medicines/:id", h.DeleteMedicine)

	api.POST("/medicines/:id/supply-chain", h.UpdateSupplyChain)
	api.POST("/medicines/:id/flag", h.FlagMedicine)
	api.POST("/medicines/:id/unflag", h.UnflagMedicine)
	api.POST("/medicines/:id/scan", h.RecordScan)
	api.PUT("/medicines/:id/distributors", h.AssignDistributors)

	api.GET("/manufacturers/:name/medicines", h.ListByManufacturer)
	api.GET("/owners/:owner/medicines", h.ListByOwner)
}

// httpError maps the domain failure taxonomy onto transport codes. The
// core surfaces sentinel-wrapped errors; this is the only place that
// knows about HTTP.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) RegisterMedicine(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Register(c.Request().Context(), in)
	telemetry.RecordOperation("RegisterMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

type transitionRequest struct {
	Handler  string `json:"handler"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes,omitempty"`
}

func (h *Handler) UpdateSupplyChain(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.UpdateSupplyChain(c.Request().Context(),
		c.Param("id"), req.Handler, Status(req.Status), req.Location, req.Notes)
	telemetry.RecordOperation("UpdateSupplyChain", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

type flagRequest struct {
	FlaggedBy string `json:"flaggedBy"`
	Reason    string `json:"reason"`
	Location  string `json:"location"`
}

func (h *Handler) FlagMedicine(c echo.Context) error {
	var req flagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Flag(c.Request().Context(), c.Param("id"), req.FlaggedBy, req.Reason, req.Location)
	telemetry.RecordOperation("FlagMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

type unflagRequest struct {
	UnflaggedBy     string `json:"unflaggedBy"`
	ResolutionNotes string `json:"resolutionNotes"`
	Location        string `json:"location"`
}

func (h *Handler) UnflagMedicine(c echo.Context) error {
	var req unflagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Unflag(c.Request().Context(), c.Param("id"), req.UnflaggedBy, req.ResolutionNotes, req.Location)
	telemetry.RecordOperation("UnflagMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

type scanRequest struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Username     string `json:"username"`
	Location     string `json:"location"`
}

func (h *Handler) RecordScan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.RecordScan(c.Request().Context(),
		c.Param("id"), req.Organization, req.Role, req.Username, req.Location)
	telemetry.RecordOperation("RecordScan", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

type assignRequest struct {
	Distributors []string `json:"distributors"`
}

func (h *Handler) AssignDistributors(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	payload, _ := json.Marshal(req.Distributors)
	m, err := h.svc.AssignDistributors(c.Request().Context(), c.Param("id"), string(payload))
	telemetry.RecordOperation("AssignDistributorsToMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	m, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	telemetry.RecordOperation("GetMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	records, err := h.svc.All(c.Request().Context())
	telemetry.RecordOperation("GetAllMedicines", err)
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	page := paginate(records, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(records), pg.Limit, pg.Offset))
}

func (h *Handler) ListFlagged(c echo.Context) error {
	items, err := h.svc.FlaggedMedicines(c.Request().Context())
	telemetry.RecordOperation("GetFlaggedMedicines", err)
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	page := paginate(items, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(items), pg.Limit, pg.Offset))
}

func (h *Handler) ListByManufacturer(c echo.Context) error {
	items, err := h.svc.ByManufacturer(c.Request().Context(), c.Param("name"))
	telemetry.RecordOperation("GetMedicinesByManufacturer", err)
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	page := paginate(items, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(items), pg.Limit, pg.Offset))
}

func (h *Handler) ListByOwner(c echo.Context) error {
	items, err := h.svc.ByOwner(c.Request().Context(), c.Param("owner"))
	telemetry.RecordOperation("GetMedicinesByOwner", err)
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	page := paginate(items, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(items), pg.Limit, pg.Offset))
}

func (h *Handler) DeleteMedicine(c echo.Context) error {
	err := h.svc.Delete(c.Request().Context(), c.Param("id"))
	telemetry.RecordOperation("DeleteMedicine", err)
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// paginate slices a full result set for the HTTP envelope. The core
// query facade always returns whole results; paging is gateway-only.
func paginate[T any](items []T, pg pagination.Params) []T {
	if pg.Offset >= len(items) {
		return []T{}
	}
	end := pg.Offset + pg.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[pg.Offset:end]
}
