// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"
	"testing"

	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func alterPlusOwnerStmt(newOwner string) *tree.AlterOperatorOwner {
	return &tree.AlterOperatorOwner{
		Name:     tree.MakeOperatorName("+"),
		LeftArg:  tree.MakeTypeName("int8"),
		RightArg: tree.MakeTypeName("int8"),
		NewOwner: username(newOwner),
	}
}

// setupAliceOperator creates the int8 + int8 operator owned by alice and
// returns its OID.
func setupAliceOperator(t *testing.T, env *testEnv) oid.Oid {
	t.Helper()
	ctx := context.Background()
	env.grantCreateOnPublic(t, username("alice"))
	require.NoError(t, env.planner("alice").RunDDL(ctx, binaryPlusStmt()))
	name := tree.MakeOperatorName("+")
	int8T := tree.MakeTypeName("int8")
	id, err := env.cat.LookupOperator(ctx, &name, int8T, int8T)
	require.NoError(t, err)
	return id
}

func (env *testEnv) operatorOwner(t *testing.T, id oid.Oid) string {
	t.Helper()
	desc, err := env.cat.GetOperator(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, desc)
	return desc.GetOwner().Normalized()
}

func TestAlterOperatorOwner(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)
	ctx := context.Background()

	// alice may hand the operator to a role she is a member of, provided
	// that role can create in the schema.
	env.cat.AddRoleMember(username("bob"), username("alice"), false)
	env.grantCreateOnPublic(t, username("bob"))

	require.NoError(t, env.planner("alice").RunDDL(ctx, alterPlusOwnerStmt("bob")))
	require.Equal(t, "bob", env.operatorOwner(t, opID))

	// The owned-by dependency edge follows the descriptor.
	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: opID}
	owner, ok := env.cat.OwnerDependency(addr)
	require.True(t, ok)
	require.Equal(t, username("bob"), owner)
}

// TestAlterOperatorOwnerNoop verifies that setting the owner to the current
// owner succeeds without permission checks or catalog writes. Dump scripts
// replay owner changes unconditionally and rely on this.
func TestAlterOperatorOwnerNoop(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)
	ctx := context.Background()
	writesBefore := env.cat.OwnerDepWrites()

	// bob holds no privilege at all, yet the no-op succeeds.
	require.NoError(t, env.planner("bob").RunDDL(ctx, alterPlusOwnerStmt("alice")))
	require.Equal(t, "alice", env.operatorOwner(t, opID))
	require.Equal(t, writesBefore, env.cat.OwnerDepWrites())
}

func TestAlterOperatorOwnerNotOwner(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)

	err := env.planner("bob").RunDDL(context.Background(), alterPlusOwnerStmt("bob"))
	require.EqualError(t, err, "must be owner of operator +")
	require.Equal(t, pgcode.InsufficientPrivilege, pgerror.GetPGCode(err))
	require.Equal(t, "alice", env.operatorOwner(t, opID))
}

func TestAlterOperatorOwnerNotMember(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)

	// alice owns the operator but is not a member of bob.
	err := env.planner("alice").RunDDL(context.Background(), alterPlusOwnerStmt("bob"))
	require.EqualError(t, err, `must be member of role "bob"`)
	require.Equal(t, pgcode.InsufficientPrivilege, pgerror.GetPGCode(err))
	require.Equal(t, "alice", env.operatorOwner(t, opID))
}

func TestAlterOperatorOwnerNewOwnerNeedsCreate(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)
	ctx := context.Background()

	// Membership alone is not enough: the new owner must be able to create
	// in the containing schema.
	env.cat.AddRoleMember(username("bob"), username("alice"), false)
	err := env.planner("alice").RunDDL(ctx, alterPlusOwnerStmt("bob"))
	require.EqualError(t, err, "user bob does not have CREATE privilege on schema public")
	require.Equal(t, pgcode.InsufficientPrivilege, pgerror.GetPGCode(err))
	require.Equal(t, "alice", env.operatorOwner(t, opID))

	env.grantCreateOnPublic(t, username("bob"))
	require.NoError(t, env.planner("alice").RunDDL(ctx, alterPlusOwnerStmt("bob")))
	require.Equal(t, "bob", env.operatorOwner(t, opID))
}

func TestAlterOperatorOwnerSuperuser(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)

	// root bypasses ownership, membership and schema privilege checks.
	require.NoError(t, env.planner("root").RunDDL(context.Background(),
		alterPlusOwnerStmt("carol")))
	require.Equal(t, "carol", env.operatorOwner(t, opID))
}

func TestAlterOperatorOwnerUndefinedRole(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)

	err := env.planner("alice").RunDDL(context.Background(), alterPlusOwnerStmt("nobody"))
	require.EqualError(t, err, `role "nobody" does not exist`)
	require.Equal(t, pgcode.UndefinedObject, pgerror.GetPGCode(err))
	require.Equal(t, "alice", env.operatorOwner(t, opID))
}

func TestAlterOperatorOwnerUndefinedOperator(t *testing.T) {
	env := newTestEnv(t)

	err := env.planner("root").RunDDL(context.Background(), alterPlusOwnerStmt("alice"))
	require.EqualError(t, err, "operator + (int8, int8) does not exist")
	require.Equal(t, pgcode.UndefinedObject, pgerror.GetPGCode(err))
}

func TestAlterOperatorOwnerByID(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)
	ctx := context.Background()

	p := env.planner("root")
	require.NoError(t, p.AlterOperatorOwnerByID(ctx, opID, username("carol")))
	require.Equal(t, "carol", env.operatorOwner(t, opID))

	// An unresolved OID on this path is an internal error: callers hand over
	// identifiers they already resolved.
	err := p.AlterOperatorOwnerByID(ctx, oid.Oid(99999), username("carol"))
	require.Error(t, err)
	require.Equal(t, pgcode.Internal, pgerror.GetPGCode(err))
	require.Contains(t, err.Error(), "cache lookup failed for operator 99999")
}

// Membership may be indirect: alice -> team -> bob style chains are expanded
// transitively.
func TestAlterOperatorOwnerIndirectMembership(t *testing.T) {
	env := newTestEnv(t)
	opID := setupAliceOperator(t, env)
	ctx := context.Background()

	env.cat.CreateRole(username("team"), false)
	env.cat.AddRoleMember(username("team"), username("alice"), false)
	env.cat.AddRoleMember(username("bob"), username("team"), false)
	env.grantCreateOnPublic(t, username("bob"))

	require.NoError(t, env.planner("alice").RunDDL(ctx, alterPlusOwnerStmt("bob")))
	require.Equal(t, "bob", env.operatorOwner(t, opID))
}
