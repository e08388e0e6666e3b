package handlers

import (
	"errors"
	"net/http"

	"famledger/internal/common"
	"famledger/internal/models"
	"famledger/internal/repositories"
	"famledger/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// RoleHandlers manages tenant-local roles. Destructive operations consult
// the protection policy before touching built-in system roles.
type RoleHandlers struct {
	roles      repositories.RoleRepository
	protection *services.ProtectionPolicy
}

func NewRoleHandlers(roles repositories.RoleRepository, protection *services.ProtectionPolicy) *RoleHandlers {
	return &RoleHandlers{roles: roles, protection: protection}
}

// List lists the guarded family's roles
func (h *RoleHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	roles, err := h.roles.ListByFamily(ctx, familyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list roles")
	}
	return c.JSON(http.StatusOK, roles)
}

// RoleRequest represents a role create/update payload
type RoleRequest struct {
	FamilyID string `json:"familyId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
}

// Create creates a tenant-local role
func (h *RoleHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Code == "" || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Role code and name are required")
	}

	role := &models.Role{
		ID:       uuid.New(),
		Code:     req.Code,
		Name:     req.Name,
		FamilyID: &familyID,
	}
	if err := h.roles.Create(ctx, role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create role")
	}
	return c.JSON(http.StatusCreated, role)
}

// Update renames or recodes a role
func (h *RoleHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role id format")
	}

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	role, err := h.loadFamilyRole(c, familyID, roleID)
	if err != nil {
		return err
	}

	if err := h.protection.Validate("role", "update", role.Code); err != nil {
		var ruleErr *services.RuleError
		if errors.As(err, &ruleErr) {
			return echo.NewHTTPError(http.StatusBadRequest, ruleErr.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update role")
	}

	if req.Code != "" {
		role.Code = req.Code
	}
	if req.Name != "" {
		role.Name = req.Name
	}
	if err := h.roles.Update(ctx, role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update role")
	}
	return c.JSON(http.StatusOK, role)
}

// Delete soft-deletes a role unless it is protected
func (h *RoleHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role id format")
	}

	role, err := h.loadFamilyRole(c, familyID, roleID)
	if err != nil {
		return err
	}

	if err := h.protection.Validate("role", "delete", role.Code); err != nil {
		var ruleErr *services.RuleError
		if errors.As(err, &ruleErr) {
			return echo.NewHTTPError(http.StatusBadRequest, ruleErr.Message)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete role")
	}

	if err := h.roles.SoftDelete(ctx, familyID, roleID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete role")
	}
	return c.NoContent(http.StatusNoContent)
}

// RoleStatusRequest represents a role disable/enable payload
type RoleStatusRequest struct {
	FamilyID string `json:"familyId"`
	Disabled bool   `json:"disabled"`
}

// UpdateStatus disables or re-enables a role unless it is protected
func (h *RoleHandlers) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role id format")
	}

	var req RoleStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	role, err := h.loadFamilyRole(c, familyID, roleID)
	if err != nil {
		return err
	}

	if req.Disabled {
		if err := h.protection.Validate("role", "disable", role.Code); err != nil {
			var ruleErr *services.RuleError
			if errors.As(err, &ruleErr) {
				return echo.NewHTTPError(http.StatusBadRequest, ruleErr.Message)
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update role status")
		}
	}

	if err := h.roles.SetDisabled(ctx, familyID, roleID, req.Disabled); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update role status")
	}
	return c.NoContent(http.StatusNoContent)
}

// loadFamilyRole loads a role and confirms it belongs to the guarded family
func (h *RoleHandlers) loadFamilyRole(c echo.Context, familyID, roleID uuid.UUID) (*models.Role, error) {
	role, err := h.roles.GetByID(c.Request().Context(), roleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "role not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load role")
	}
	if role.IsDeleted || role.FamilyID == nil || *role.FamilyID != familyID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "role not found")
	}
	return role, nil
}
