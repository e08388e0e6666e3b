package handlers

import (
	"net/http"

	"famledger/internal/common"
	"famledger/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RBACHandlers answers "what can this user do" queries and builds the
// navigation menu. Both accept an optional familyId query parameter;
// without it the user's default family is used.
type RBACHandlers struct {
	rbac services.RBACService
}

func NewRBACHandlers(rbac services.RBACService) *RBACHandlers {
	return &RBACHandlers{rbac: rbac}
}

// GetPermissions returns the caller's effective permission codes
func (h *RBACHandlers) GetPermissions(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	familyID, err := optionalFamilyID(c)
	if err != nil {
		return err
	}

	codes, err := h.rbac.GetPermissions(ctx, userID, familyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve permissions")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"permissions": codes})
}

// GetNav returns the caller's permission-filtered navigation tree
func (h *RBACHandlers) GetNav(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	familyID, err := optionalFamilyID(c)
	if err != nil {
		return err
	}

	nav, err := h.rbac.GetNav(ctx, userID, familyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build navigation")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"nav": nav})
}

func optionalFamilyID(c echo.Context) (*uuid.UUID, error) {
	raw := c.QueryParam("familyId")
	if raw == "" {
		return nil, nil
	}
	familyID, err := uuid.Parse(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid familyId format")
	}
	return &familyID, nil
}
