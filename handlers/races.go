package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/racecal/models"
	"github.com/padraicbc/racecal/store"
)

type createRaceRequest struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	Length         float64   `json:"length" validate:"required,gt=0"`
	Data           time.Time `json:"data" validate:"required"`
	PrincipalImage string    `json:"principalimage"`
	OtherImage     []string  `json:"otherImage"`
	Typology       string    `json:"typology"`
	Latitude       *float64  `json:"latitude"`
	Longitude      *float64  `json:"longitude"`
}

// ListRaces returns every race as JSON. No filter parameters: search and
// typology filtering are client-side projections.
func (h *Handler) ListRaces(c echo.Context) error {
	races, err := h.races.All(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, races)
}

// GetRace returns the race matching the path identifier, or an explicit 404.
func (h *Handler) GetRace(c echo.Context) error {
	id := c.Param("id")

	race, err := h.races.ByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "race not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, race)
}

// CreateRace inserts a new race owned by the session user. The store assigns
// the identifier; comments and likes start empty.
func (h *Handler) CreateRace(c echo.Context) error {
	var req createRaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.Typology != "" && !models.ValidInterest(req.Typology) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown typology")
	}

	owner, _ := c.Get("user_id").(string)
	race := &models.Race{
		IDOwner:        owner,
		Title:          req.Title,
		Description:    strings.TrimSpace(req.Description),
		Length:         req.Length,
		Data:           req.Data,
		PrincipalImage: req.PrincipalImage,
		OtherImage:     req.OtherImage,
		Typology:       req.Typology,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Comments:       []models.Comment{},
		Likes:          []models.Like{},
	}

	if err := h.races.Insert(c.Request().Context(), race); err != nil {
		if errors.Is(err, store.ErrMissingFields) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, race)
}

// UpdateRace merges a partial or full set of race fields into the stored
// document. Scalar edits require ownership; comment/like patches only
// require a session, and the merge restricts their effect to the caller's
// own entries.
func (h *Handler) UpdateRace(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Id is required")
	}

	var patch models.RacePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if patch.Typology != nil && *patch.Typology != "" && !models.ValidInterest(*patch.Typology) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown typology")
	}

	actor, _ := c.Get("user_id").(string)
	ctx := c.Request().Context()

	if patch.TouchesTrackedFields() {
		race, err := h.races.ByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "race not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if race.IDOwner != actor {
			return echo.NewHTTPError(http.StatusForbidden, "only the owner may edit this race")
		}
	}

	updated, err := h.races.Update(ctx, id, patch, actor)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "race not found")
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Errore nell'aggiornamento della gara",
		})
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteRace removes a race. Owner-only; deleting an identifier that no
// longer exists still returns the confirmation message.
func (h *Handler) DeleteRace(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Id is required"})
	}

	actor, _ := c.Get("user_id").(string)
	ctx := c.Request().Context()

	race, err := h.races.ByID(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Already gone: delete is idempotent at this layer.
		return c.JSON(http.StatusOK, map[string]string{"message": "Gara eliminata con Successo"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Errore nell'eliminazione della gara",
		})
	}

	if race.IDOwner != actor {
		return echo.NewHTTPError(http.StatusForbidden, "only the owner may delete this race")
	}

	if err := h.races.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Errore nell'eliminazione della gara",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Gara eliminata con Successo"})
}
