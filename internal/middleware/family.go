package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"famledger/internal/common"
	"famledger/internal/repositories"
	"famledger/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// FamilyHeader is the fallback transport for the tenant id
const FamilyHeader = "x-family-id"

// FamilyGuard enforces tenant scoping on family routes: it resolves the
// target family, requires an active membership, and checks the route's
// declared permission codes against the member's local-only grants.
// Family owners skip the permission check.
type FamilyGuard struct {
	families    repositories.FamilyRepository
	memberships repositories.MembershipRepository
	rbac        services.RBACService
}

func NewFamilyGuard(families repositories.FamilyRepository, memberships repositories.MembershipRepository, rbac services.RBACService) *FamilyGuard {
	return &FamilyGuard{
		families:    families,
		memberships: memberships,
		rbac:        rbac,
	}
}

// Require returns the guard middleware for a route. Membership is checked
// even when no permission codes are declared.
func (g *FamilyGuard) Require(perms ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := common.GetUserIDFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			familyID, err := resolveFamilyID(c)
			if err != nil {
				return err
			}

			ctx := context.WithValue(c.Request().Context(), common.FamilyIDKey, familyID)
			c.SetRequest(c.Request().WithContext(ctx))

			member, err := g.memberships.GetActive(ctx, familyID, userID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return echo.NewHTTPError(http.StatusForbidden, "not a member of this family")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "membership lookup failed")
			}

			if len(perms) > 0 {
				owner, err := g.isOwner(ctx, familyID, userID)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "family lookup failed")
				}
				if !owner {
					codes, err := g.rbac.GetLocalPermissions(ctx, member.RoleID)
					if err != nil {
						return echo.NewHTTPError(http.StatusInternalServerError, "permission lookup failed")
					}
					granted := make(map[string]struct{}, len(codes))
					for _, code := range codes {
						granted[code] = struct{}{}
					}
					for _, perm := range perms {
						if _, ok := granted[perm]; !ok {
							return echo.NewHTTPError(http.StatusForbidden, "Permission denied")
						}
					}
				}
			}

			return next(c)
		}
	}
}

func (g *FamilyGuard) isOwner(ctx context.Context, familyID, userID uuid.UUID) (bool, error) {
	family, err := g.families.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return family.OwnerUserID == userID, nil
}

// resolveFamilyID finds the tenant id in, by priority: query parameter,
// JSON body field, request header.
func resolveFamilyID(c echo.Context) (uuid.UUID, error) {
	raw := c.QueryParam("familyId")

	if raw == "" {
		raw = familyIDFromBody(c)
	}
	if raw == "" {
		raw = c.Request().Header.Get(FamilyHeader)
	}
	if raw == "" {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "familyId is required")
	}

	familyID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid familyId format")
	}
	return familyID, nil
}

// familyIDFromBody peeks at a JSON body for a familyId field and restores
// the body for the handler.
func familyIDFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || req.Method == http.MethodGet {
		return ""
	}

	body, err := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var payload struct {
		FamilyID string `json:"familyId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.FamilyID
}
