package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"famledger/internal/common"
	"famledger/internal/models"
	"famledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type FamilyHandlers struct {
	families    repositories.FamilyRepository
	memberships repositories.MembershipRepository
	roles       repositories.RoleRepository
}

func NewFamilyHandlers(families repositories.FamilyRepository, memberships repositories.MembershipRepository, roles repositories.RoleRepository) *FamilyHandlers {
	return &FamilyHandlers{
		families:    families,
		memberships: memberships,
		roles:       roles,
	}
}

// ListMine lists the families the caller actively belongs to
func (h *FamilyHandlers) ListMine(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	families, err := h.families.ListByUser(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list families")
	}
	return c.JSON(http.StatusOK, families)
}

// CreateFamilyRequest represents the family creation payload
type CreateFamilyRequest struct {
	Name string `json:"name"`
}

// Create creates a family; the caller becomes its owner with a local
// OWNER role and an active membership.
func (h *FamilyHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req CreateFamilyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Family name is required")
	}

	family := &models.Family{
		ID:          uuid.New(),
		Name:        req.Name,
		OwnerUserID: userID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := h.families.Create(ctx, family); err != nil {
		log.Printf("failed to create family %q: %v", req.Name, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create family")
	}

	// Seed the built-in local roles for the new family
	ownerRole := &models.Role{ID: uuid.New(), Code: models.RoleCodeOwner, Name: "Owner", FamilyID: &family.ID}
	memberRole := &models.Role{ID: uuid.New(), Code: models.RoleCodeMember, Name: "Member", FamilyID: &family.ID}
	for _, role := range []*models.Role{ownerRole, memberRole} {
		if err := h.roles.Create(ctx, role); err != nil {
			log.Printf("failed to seed role %s for family %s: %v", role.Code, family.ID, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create family")
		}
	}

	member := &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: family.ID,
		UserID:   userID,
		RoleID:   ownerRole.ID,
		Status:   models.MemberStatusActive,
		JoinedAt: time.Now(),
	}
	if err := h.memberships.Create(ctx, member); err != nil {
		log.Printf("failed to create owner membership for family %s: %v", family.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create family")
	}

	return c.JSON(http.StatusCreated, family)
}

// Get returns the guarded family
func (h *FamilyHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	family, err := h.families.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "family")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load family")
	}
	return c.JSON(http.StatusOK, family)
}

// UpdateFamilyRequest represents the family update payload
type UpdateFamilyRequest struct {
	FamilyID string `json:"familyId"`
	Name     string `json:"name"`
}

// Update renames the guarded family
func (h *FamilyHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	var req UpdateFamilyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Family name is required")
	}

	family, err := h.families.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "family")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load family")
	}

	family.Name = req.Name
	if err := h.families.Update(ctx, family); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update family")
	}
	return c.JSON(http.StatusOK, family)
}

// Delete soft-deletes the guarded family
func (h *FamilyHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	if err := h.families.SoftDelete(ctx, familyID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete family")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMembers lists memberships of the guarded family
func (h *FamilyHandlers) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	members, err := h.memberships.ListByFamily(ctx, familyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list members")
	}
	return c.JSON(http.StatusOK, members)
}

// InviteMemberRequest represents the invite payload
type InviteMemberRequest struct {
	FamilyID string `json:"familyId"`
	UserID   string `json:"user_id"`
	RoleCode string `json:"role_code"`
}

// InviteMember creates an invited membership for a user
func (h *FamilyHandlers) InviteMember(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	var req InviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user_id format")
	}
	if req.RoleCode == "" {
		req.RoleCode = models.RoleCodeMember
	}

	role, err := h.roles.GetByCode(ctx, familyID, req.RoleCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "role")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve role")
	}

	if _, err := h.memberships.GetByFamilyAndUser(ctx, familyID, userID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User is already a member of this family")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check membership")
	}

	member := &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: familyID,
		UserID:   userID,
		RoleID:   role.ID,
		Status:   models.MemberStatusInvited,
		JoinedAt: time.Now(),
	}
	if err := h.memberships.Create(ctx, member); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to invite member")
	}
	return c.JSON(http.StatusCreated, member)
}

// AcceptInviteRequest represents the invite acceptance payload
type AcceptInviteRequest struct {
	FamilyID string `json:"familyId"`
}

// AcceptInvite activates the caller's invited membership. This route is
// exempt from the family guard because the caller is not yet active.
func (h *FamilyHandlers) AcceptInvite(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req AcceptInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	familyID, err := uuid.Parse(req.FamilyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	member, err := h.memberships.GetByFamilyAndUser(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "invitation")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load invitation")
	}
	if member.Status != models.MemberStatusInvited {
		return echo.NewHTTPError(http.StatusConflict, "No pending invitation for this family")
	}

	if err := h.memberships.UpdateStatus(ctx, member.FamilyID, member.ID, models.MemberStatusActive); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to accept invitation")
	}
	member.Status = models.MemberStatusActive
	return c.JSON(http.StatusOK, member)
}

// UpdateMemberStatusRequest represents the member status payload
type UpdateMemberStatusRequest struct {
	FamilyID string `json:"familyId"`
	Status   string `json:"status"`
}

// UpdateMemberStatus enables or disables a membership of the guarded
// family. Member ids belonging to other families read as not found.
func (h *FamilyHandlers) UpdateMemberStatus(c echo.Context) error {
	ctx := c.Request().Context()

	familyID, ok := common.GetFamilyIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid member id format")
	}

	var req UpdateMemberStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Status != models.MemberStatusActive && req.Status != models.MemberStatusDisabled {
		return echo.NewHTTPError(http.StatusBadRequest, "status must be active or disabled")
	}

	if err := h.memberships.UpdateStatus(ctx, familyID, memberID, req.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "member")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update member status")
	}
	return c.NoContent(http.StatusNoContent)
}
