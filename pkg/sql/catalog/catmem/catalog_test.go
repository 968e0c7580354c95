// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package catmem

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/opdesc"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func user(s string) security.SQLUsername {
	return security.MakeSQLUsernameFromPreNormalizedString(s)
}

// newCatalog returns a catalog with one registered type and routine, plus the
// IDs needed to build operators on them.
func newCatalog(t *testing.T) (*Catalog, oid.Oid, descpb.ID) {
	t.Helper()
	c := New()
	typ := c.RegisterType("int8")
	c.RegisterRoutine("int8eq")
	sc, err := c.ResolveCreationSchema(context.Background(), &tree.OperatorName{Object: "="})
	require.NoError(t, err)
	return c, typ, sc.GetID()
}

func eqArgs(schemaID descpb.ID, typ oid.Oid) catalog.CreateOperatorArgs {
	return catalog.CreateOperatorArgs{
		Name:         "=",
		SchemaID:     schemaID,
		Owner:        security.RootUserName(),
		LeftTypeID:   typ,
		RightTypeID:  typ,
		FunctionName: tree.MakeRoutineName("int8eq"),
	}
}

func TestCreateOperatorAllocatesUserOids(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	ids, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)
	require.GreaterOrEqual(t, uint32(ids.OperatorOid), uint32(firstUserOid))

	desc, err := c.GetOperator(ctx, ids.OperatorOid)
	require.NoError(t, err)
	require.NotNil(t, desc)
	require.Equal(t, "=", desc.GetName())
}

func TestCreateOperatorDuplicateSignature(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	_, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)
	_, err = c.CreateOperator(ctx, eqArgs(scID, typ))
	require.EqualError(t, err, "operator = already exists")
	require.Equal(t, pgcode.DuplicateObject, pgerror.GetPGCode(err))
}

// Same symbol with different operand types is a distinct operator.
func TestCreateOperatorOverloadsBySignature(t *testing.T) {
	c, typ, scID := newCatalog(t)
	other := c.RegisterType("int4")
	ctx := context.Background()

	_, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)

	args := eqArgs(scID, typ)
	args.RightTypeID = other
	_, err = c.CreateOperator(ctx, args)
	require.NoError(t, err)
}

func TestCreateOperatorShellFill(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	// The negator link creates a shell with the same operand types.
	args := eqArgs(scID, typ)
	neg := tree.MakeRoutineName("<>")
	args.NegatorName = &neg
	ids, err := c.CreateOperator(ctx, args)
	require.NoError(t, err)
	require.NotEqual(t, descpb.InvalidOid, ids.NegatorOid)

	shell, err := c.GetOperator(ctx, ids.NegatorOid)
	require.NoError(t, err)
	require.True(t, shell.(*opdesc.OperatorDescriptor).IsShell())

	// Defining the shell reuses its OID and clears the placeholder flag.
	fill := eqArgs(scID, typ)
	fill.Name = "<>"
	fillIDs, err := c.CreateOperator(ctx, fill)
	require.NoError(t, err)
	require.Equal(t, ids.NegatorOid, fillIDs.OperatorOid)

	filled, err := c.GetOperator(ctx, fillIDs.OperatorOid)
	require.NoError(t, err)
	require.False(t, filled.(*opdesc.OperatorDescriptor).IsShell())
}

func TestCreateOperatorPresetOidConflict(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	ids, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)

	args := eqArgs(scID, typ)
	args.Name = "<>"
	args.OperatorOid = ids.OperatorOid
	_, err = c.CreateOperator(ctx, args)
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestDeleteOperatorRowClearsSignature(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	ids, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)

	removed, err := c.DeleteOperatorRow(ctx, ids.OperatorOid)
	require.NoError(t, err)
	require.True(t, removed)

	// The signature is free again.
	_, err = c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)

	removed, err = c.DeleteOperatorRow(ctx, ids.OperatorOid)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestGetOperatorForUpdateReturnsCopy(t *testing.T) {
	c, typ, scID := newCatalog(t)
	ctx := context.Background()

	ids, err := c.CreateOperator(ctx, eqArgs(scID, typ))
	require.NoError(t, err)

	mut, err := c.GetOperatorForUpdate(ctx, ids.OperatorOid)
	require.NoError(t, err)
	mut.SetOwner(user("alice"))

	// Not visible until written back.
	desc, err := c.GetOperator(ctx, ids.OperatorOid)
	require.NoError(t, err)
	require.Equal(t, security.RootUserName(), desc.GetOwner())

	require.NoError(t, c.WriteOperator(ctx, mut))
	desc, err = c.GetOperator(ctx, ids.OperatorOid)
	require.NoError(t, err)
	require.Equal(t, user("alice"), desc.GetOwner())
}

func TestChangeOwnerDependencyRequiresEdge(t *testing.T) {
	c, _, _ := newCatalog(t)

	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: 99999}
	err := c.ChangeOwnerDependency(context.Background(), addr, user("alice"))
	require.Error(t, err)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestResolveCreationSchema(t *testing.T) {
	c := New()
	ctx := context.Background()

	// Unqualified names land in the default schema.
	sc, err := c.ResolveCreationSchema(ctx, &tree.OperatorName{Object: "+"})
	require.NoError(t, err)
	require.Equal(t, DefaultSchema, sc.GetName())

	name := tree.MakeQualifiedOperatorName("nope", "+")
	_, err = c.ResolveCreationSchema(ctx, &name)
	require.EqualError(t, err, `schema "nope" does not exist`)
	require.Equal(t, pgcode.InvalidSchemaName, pgerror.GetPGCode(err))
}

func TestResolveTypeUndefined(t *testing.T) {
	c := New()
	_, err := c.ResolveType(context.Background(), tree.MakeTypeName("nope"))
	require.EqualError(t, err, `type "nope" does not exist`)
	require.Equal(t, pgcode.UndefinedObject, pgerror.GetPGCode(err))
}

func TestIsSuperuser(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.CreateRole(user("su"), true)
	c.CreateRole(user("plain"), false)
	c.CreateRole(security.AdminRoleName(), false)
	c.CreateRole(user("ops"), false)
	c.AddRoleMember(security.AdminRoleName(), user("ops"), false)

	for _, tc := range []struct {
		u    security.SQLUsername
		want bool
	}{
		{security.RootUserName(), true},
		{user("su"), true},
		{user("plain"), false},
		{user("ops"), true}, // member of admin
	} {
		got, err := c.IsSuperuser(ctx, tc.u)
		require.NoError(t, err)
		require.Equal(t, tc.want, got, "user %s", tc.u)
	}
}

// Membership expansion is transitive, and the admin option is kept per
// membership edge.
func TestMemberOfWithAdminOption(t *testing.T) {
	c := New()
	ctx := context.Background()
	c.CreateRole(user("a"), false)
	c.CreateRole(user("b"), false)
	c.CreateRole(user("c"), false)
	c.AddRoleMember(user("b"), user("a"), true)
	c.AddRoleMember(user("c"), user("b"), false)

	memberOf, err := c.MemberOfWithAdminOption(ctx, user("a"))
	require.NoError(t, err)
	require.Equal(t, map[security.SQLUsername]bool{
		user("b"): true,
		user("c"): false,
	}, memberOf)
}
