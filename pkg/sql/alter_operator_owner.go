// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
	"github.com/keldadb/kelda/pkg/util/log"
	"github.com/lib/pq/oid"
)

type alterOperatorOwnerNode struct {
	n    *tree.AlterOperatorOwner
	opID oid.Oid
}

// Use to satisfy the linter.
var _ planNode = &alterOperatorOwnerNode{n: nil}

// AlterOperatorOwner changes the owner of an operator resolved by name and
// operand types. There is no tolerate-missing option on this path.
func (p *planner) AlterOperatorOwner(
	ctx context.Context, n *tree.AlterOperatorOwner,
) (planNode, error) {
	opID, err := p.ExecCfg().Catalog.LookupOperator(ctx, &n.Name, n.LeftArg, n.RightArg)
	if err != nil {
		return nil, err
	}
	if opID == descpb.InvalidOid {
		return nil, sqlerrors.NewUndefinedOperatorError(&n.Name, n.LeftArg, n.RightArg)
	}
	return &alterOperatorOwnerNode{n: n, opID: opID}, nil
}

func (n *alterOperatorOwnerNode) startExec(params runParams) error {
	return params.p.alterOperatorOwnerImpl(params.ctx, n.opID, n.n.NewOwner)
}

func (n *alterOperatorOwnerNode) Next(params runParams) (bool, error) { return false, nil }
func (n *alterOperatorOwnerNode) Values() tree.Datums                 { return tree.Datums{} }
func (n *alterOperatorOwnerNode) Close(ctx context.Context)           {}
func (n *alterOperatorOwnerNode) ReadingOwnWrites()                   {}

// AlterOperatorOwnerByID changes the owner of an already-resolved operator.
// Used by callers that hold an OID, e.g. REASSIGN OWNED BY processing.
func (p *planner) AlterOperatorOwnerByID(
	ctx context.Context, id oid.Oid, newOwner security.SQLUsername,
) error {
	return p.alterOperatorOwnerImpl(ctx, id, newOwner)
}

// alterOperatorOwnerImpl is the shared guts of the two entry points. The
// descriptor is fetched under a row-level exclusive lock so that concurrent
// owner changes on the same operator serialize.
//
// Dispatch to workers, if needed, is the caller's responsibility.
func (p *planner) alterOperatorOwnerImpl(
	ctx context.Context, id oid.Oid, newOwner security.SQLUsername,
) error {
	cat := p.ExecCfg().Catalog

	mut, err := cat.GetOperatorForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if mut == nil {
		// Should not happen: the caller resolved the OID under the same
		// transaction.
		return errors.AssertionFailedf("cache lookup failed for operator %d", id)
	}

	// If the new owner is the same as the existing owner, consider the
	// command to have succeeded. This is for dump restoration purposes.
	if mut.GetOwner() == newOwner {
		return nil
	}

	super, err := p.IsSuperuser(ctx)
	if err != nil {
		return err
	}
	if !super {
		// Otherwise, must be owner of the existing object.
		if mut.GetOwner() != p.User() {
			return pgerror.Newf(pgcode.InsufficientPrivilege,
				"must be owner of operator %s", mut.GetName())
		}
		// Must be able to become new owner.
		if err := p.checkIsMemberOfRole(ctx, p.User(), newOwner); err != nil {
			return err
		}
		// New owner must have CREATE privilege on the schema.
		if err := p.canCreateOnSchema(ctx, mut.GetSchemaID(), newOwner); err != nil {
			return err
		}
	}

	mut.SetOwner(newOwner)
	if err := cat.WriteOperator(ctx, mut); err != nil {
		return err
	}

	// Update the owner dependency reference so role-deletion logic stays
	// consistent.
	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: id}
	if err := cat.ChangeOwnerDependency(ctx, addr, newOwner); err != nil {
		return err
	}

	log.Infof(ctx, "altered owner of operator %s (%d) to %s", mut.GetName(), id, newOwner)
	return nil
}
