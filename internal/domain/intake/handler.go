package intake

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/intakehq/intake-api/internal/platform/apperr"
	"github.com/intakehq/intake-api/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "therapist", "patient"))
	g.GET("/incidents/:id/intake", h.GetFormSet)
	g.POST("/incidents/:id/intake/:key", h.SubmitSection)
	g.GET("/incidents/:id/intake/readiness", h.GetReadiness)
}

// GetFormSet returns the hydrated form set for an incident.
func (h *Handler) GetFormSet(c echo.Context) error {
	incidentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid incident id")
	}
	fs, err := h.svc.FetchIncidentSections(c.Request().Context(), incidentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"incident_id":   fs.IncidentID,
		"incident_type": fs.Type.String(),
		"sections":      fs.Sections,
	})
}

func (h *Handler) SubmitSection(c echo.Context) error {
	incidentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid incident id")
	}
	// Bind the body only; a full Bind would fold the path parameters into
	// the map and they would end up persisted as section data.
	var data map[string]any
	if err := (&echo.DefaultBinder{}).BindBody(c, &data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, created, err := h.svc.SubmitSection(c.Request().Context(), incidentID, c.Param("key"), data)
	if err != nil {
		if errors.Is(err, ErrSubmitInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return httpError(err)
	}
	if created {
		return c.JSON(http.StatusCreated, rec)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetReadiness(c echo.Context) error {
	incidentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid incident id")
	}
	r, err := h.svc.Readiness(c.Request().Context(), incidentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func httpError(err error) error {
	switch {
	case apperr.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apperr.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apperr.IsPersistence(err):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
