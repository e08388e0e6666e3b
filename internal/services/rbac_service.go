package services

import (
	"context"
	"errors"
	"sort"

	"famledger/internal/models"
	"famledger/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RBACService computes effective permission-code sets and the navigation
// tree they gate. A nil familyID resolves the user's implicit current
// family (most recently joined active membership).
type RBACService interface {
	GetPermissions(ctx context.Context, userID uuid.UUID, familyID *uuid.UUID) ([]string, error)
	GetLocalPermissions(ctx context.Context, roleID uuid.UUID) ([]string, error)
	GetNav(ctx context.Context, userID uuid.UUID, familyID *uuid.UUID) ([]*models.NavNode, error)
}

type rbacService struct {
	memberships repositories.MembershipRepository
	roles       repositories.RoleRepository
	permissions repositories.PermissionRepository
	modules     repositories.ModuleRepository
	inherited   map[string]struct{}
}

// NewRBACService builds the resolver. inheritedCodes is the role-code
// allow-list: local roles with one of these codes additionally receive the
// grants of every global template role sharing the code.
func NewRBACService(memberships repositories.MembershipRepository, roles repositories.RoleRepository, permissions repositories.PermissionRepository, modules repositories.ModuleRepository, inheritedCodes []string) RBACService {
	inherited := make(map[string]struct{}, len(inheritedCodes))
	for _, code := range inheritedCodes {
		inherited[code] = struct{}{}
	}
	return &rbacService{
		memberships: memberships,
		roles:       roles,
		permissions: permissions,
		modules:     modules,
		inherited:   inherited,
	}
}

func (s *rbacService) GetPermissions(ctx context.Context, userID uuid.UUID, familyID *uuid.UUID) ([]string, error) {
	member, err := s.resolveMembership(ctx, userID, familyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}

	role, err := s.roles.GetByID(ctx, member.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []string{}, nil
		}
		return nil, err
	}
	if role.IsDisabled || role.IsDeleted {
		return []string{}, nil
	}

	codes, err := s.permissions.ListCodesByRole(ctx, member.RoleID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}

	if _, ok := s.inherited[role.Code]; ok {
		globalCodes, err := s.permissions.ListCodesByGlobalRoleCode(ctx, role.Code)
		if err != nil {
			return nil, err
		}
		for _, code := range globalCodes {
			set[code] = struct{}{}
		}
	}

	result := make([]string, 0, len(set))
	for code := range set {
		result = append(result, code)
	}
	sort.Strings(result)
	return result, nil
}

// GetLocalPermissions returns only the role's direct grants, without the
// global-template inheritance step. The tenant guard enforces route
// permissions against this view.
func (s *rbacService) GetLocalPermissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	return s.permissions.ListCodesByRole(ctx, roleID)
}

func (s *rbacService) GetNav(ctx context.Context, userID uuid.UUID, familyID *uuid.UUID) ([]*models.NavNode, error) {
	codes, err := s.GetPermissions(ctx, userID, familyID)
	if err != nil {
		return nil, err
	}
	granted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		granted[code] = struct{}{}
	}

	modules, err := s.modules.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.Module, len(modules))
	for _, module := range modules {
		byID[module.ID] = module
	}

	// A node is shown only when its whole ancestor chain is shown:
	// filtering out a section hides every descendant under it.
	visible := make(map[uuid.UUID]bool, len(modules))
	var isVisible func(module *models.Module) bool
	isVisible = func(module *models.Module) bool {
		if v, ok := visible[module.ID]; ok {
			return v
		}
		v := true
		if module.PermissionCode != "" {
			_, v = granted[module.PermissionCode]
		}
		if v && module.ParentID != nil {
			parent, ok := byID[*module.ParentID]
			v = ok && isVisible(parent)
		}
		visible[module.ID] = v
		return v
	}

	// Modules come back ordered by sort, so appending preserves sibling
	// order at every level.
	nodes := make(map[uuid.UUID]*models.NavNode, len(modules))
	for _, module := range modules {
		if !isVisible(module) {
			continue
		}
		nodes[module.ID] = &models.NavNode{
			ID:        module.ID,
			Name:      module.Name,
			RoutePath: module.RoutePath,
			Sort:      module.Sort,
		}
	}

	var roots []*models.NavNode
	for _, module := range modules {
		node, ok := nodes[module.ID]
		if !ok {
			continue
		}
		if module.ParentID != nil {
			nodes[*module.ParentID].Children = append(nodes[*module.ParentID].Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots, nil
}

func (s *rbacService) resolveMembership(ctx context.Context, userID uuid.UUID, familyID *uuid.UUID) (*models.FamilyMember, error) {
	if familyID == nil {
		return s.memberships.GetDefaultActive(ctx, userID)
	}
	return s.memberships.GetActive(ctx, *familyID, userID)
}
