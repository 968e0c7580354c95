// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"

	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/privilege"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
)

// AuthorizationAccessor is the authorization surface used by the command
// handlers.
type AuthorizationAccessor interface {
	// CheckPrivilege verifies that the session user has `kind` on the
	// schema.
	CheckPrivilege(ctx context.Context, sc catalog.SchemaDescriptor, kind privilege.Kind) error

	// IsSuperuser returns whether the session user bypasses privilege
	// checks.
	IsSuperuser(ctx context.Context) (bool, error)

	// MemberOfWithAdminOption looks up all the roles (direct and indirect)
	// that `member` is a member of.
	MemberOfWithAdminOption(ctx context.Context, member security.SQLUsername) (map[security.SQLUsername]bool, error)
}

var _ AuthorizationAccessor = &planner{}

// CheckPrivilegeForUser verifies that `user` has `kind` on `sc`.
func (p *planner) CheckPrivilegeForUser(
	ctx context.Context, sc catalog.SchemaDescriptor, kind privilege.Kind, user security.SQLUsername,
) error {
	super, err := p.execCfg.RoleManager.IsSuperuser(ctx, user)
	if err != nil {
		return err
	}
	if super || sc.GetPrivileges().CheckPrivilege(user, kind) {
		return nil
	}
	return sqlerrors.NewInsufficientPrivilegeOnSchemaError(user, kind, sc.GetName())
}

// CheckPrivilege implements the AuthorizationAccessor interface.
func (p *planner) CheckPrivilege(
	ctx context.Context, sc catalog.SchemaDescriptor, kind privilege.Kind,
) error {
	return p.CheckPrivilegeForUser(ctx, sc, kind, p.User())
}

// IsSuperuser implements the AuthorizationAccessor interface.
func (p *planner) IsSuperuser(ctx context.Context) (bool, error) {
	return p.execCfg.RoleManager.IsSuperuser(ctx, p.User())
}

// MemberOfWithAdminOption implements the AuthorizationAccessor interface.
func (p *planner) MemberOfWithAdminOption(
	ctx context.Context, member security.SQLUsername,
) (map[security.SQLUsername]bool, error) {
	return p.execCfg.RoleManager.MemberOfWithAdminOption(ctx, member)
}

// checkIsMemberOfRole verifies that `user` may act as `role`: the role must
// exist and the user must be the role itself or a direct or indirect member
// of it.
func (p *planner) checkIsMemberOfRole(
	ctx context.Context, user, role security.SQLUsername,
) error {
	exists, err := p.execCfg.RoleManager.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if !exists {
		return pgerror.Newf(pgcode.UndefinedObject, "role %q does not exist", role.Normalized())
	}
	if user == role {
		return nil
	}
	memberOf, err := p.MemberOfWithAdminOption(ctx, user)
	if err != nil {
		return err
	}
	if _, ok := memberOf[role]; ok {
		return nil
	}
	return pgerror.Newf(pgcode.InsufficientPrivilege,
		"must be member of role %q", role.Normalized())
}

// canCreateOnSchema verifies that `user` holds CREATE on the schema with
// the given ID.
func (p *planner) canCreateOnSchema(
	ctx context.Context, schemaID descpb.ID, user security.SQLUsername,
) error {
	sc, err := p.execCfg.Catalog.GetSchemaByID(ctx, schemaID)
	if err != nil {
		return err
	}
	return p.CheckPrivilegeForUser(ctx, sc, privilege.CREATE, user)
}
