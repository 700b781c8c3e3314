package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/racecal/models"
	"github.com/padraicbc/racecal/store"
)

type createUserRequest struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Interests []string `json:"interests"`
	Password  string   `json:"password"`
}

// CreateUser registers a new user profile. A password is optional: accounts
// provisioned for an external identity provider sign in elsewhere.
func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if !models.ValidInterests(req.Interests) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown interest")
	}

	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Interests: req.Interests,
	}

	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		user.PasswordHash = hash
	}

	if err := h.users.Insert(c.Request().Context(), user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, user)
}

// GetUser returns the user matching the path identifier, or an explicit 404.
func (h *Handler) GetUser(c echo.Context) error {
	id := c.Param("id")

	user, err := h.users.ByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser merges profile fields into the stored user. Self-service only.
func (h *Handler) UpdateUser(c echo.Context) error {
	id := c.Param("id")

	actor, _ := c.Get("user_id").(string)
	if actor != id {
		return echo.NewHTTPError(http.StatusForbidden, "profiles are self-service")
	}

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if patch.Interests != nil && !models.ValidInterests(*patch.Interests) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown interest")
	}

	user, err := h.users.Update(c.Request().Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes a profile. Races the user owns are left in place; the
// confirmation message is returned whether or not the id still existed.
func (h *Handler) DeleteUser(c echo.Context) error {
	id := c.Param("id")

	actor, _ := c.Get("user_id").(string)
	if actor != id {
		return echo.NewHTTPError(http.StatusForbidden, "profiles are self-service")
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
