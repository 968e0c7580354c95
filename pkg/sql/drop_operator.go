// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgnotice"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
	"github.com/keldadb/kelda/pkg/util/log"
	"github.com/lib/pq/oid"
)

type dropOperatorNode struct {
	n    *tree.DropOperator
	opID oid.Oid
}

// Use to satisfy the linter.
var _ planNode = &dropOperatorNode{n: nil}

// DropOperator removes an operator identified by its name and exact operand
// types.
func (p *planner) DropOperator(ctx context.Context, n *tree.DropOperator) (planNode, error) {
	cat := p.ExecCfg().Catalog

	opID, err := cat.LookupOperator(ctx, &n.Name, n.LeftArg, n.RightArg)
	if err != nil {
		return nil, err
	}
	if opID == descpb.InvalidOid {
		if n.IfExists {
			p.BufferClientNotice(ctx, pgnotice.Newf("operator %s does not exist, skipping",
				sqlerrors.OperatorSignature(&n.Name, n.LeftArg, n.RightArg)))
			return newZeroNode(), nil
		}
		return nil, sqlerrors.NewUndefinedOperatorError(&n.Name, n.LeftArg, n.RightArg)
	}

	desc, err := cat.GetOperator(ctx, opID)
	if err != nil {
		return nil, err
	}
	if desc == nil {
		// The row vanished after a successful lookup; snapshot stability
		// inside the ambient transaction makes this unreachable.
		return nil, errors.AssertionFailedf("cache lookup failed for operator %d", opID)
	}

	if err := p.checkCanDropOperator(ctx, desc, &n.Name); err != nil {
		return nil, err
	}

	return &dropOperatorNode{n: n, opID: opID}, nil
}

// checkCanDropOperator verifies that the session user owns the operator or
// its containing schema.
func (p *planner) checkCanDropOperator(
	ctx context.Context, desc catalog.OperatorDescriptor, name *tree.OperatorName,
) error {
	super, err := p.IsSuperuser(ctx)
	if err != nil {
		return err
	}
	if super || desc.GetOwner() == p.User() {
		return nil
	}
	sc, err := p.ExecCfg().Catalog.GetSchemaByID(ctx, desc.GetSchemaID())
	if err != nil {
		return err
	}
	if sc.GetPrivileges().Owner() == p.User() {
		return nil
	}
	return pgerror.Newf(pgcode.InsufficientPrivilege,
		"must be owner of operator %s", name.String())
}

func (n *dropOperatorNode) startExec(params runParams) error {
	p := params.p
	ctx := params.ctx

	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: n.opID}
	if err := p.ExecCfg().Catalog.PerformDeletion(ctx, addr, n.n.DropBehavior); err != nil {
		return err
	}

	log.Infof(ctx, "dropped operator %s (%d) as %s", n.n.Name.String(), n.opID, p.User())

	return p.maybeDispatchToWorkers(ctx, n.n)
}

func (n *dropOperatorNode) Next(params runParams) (bool, error) { return false, nil }
func (n *dropOperatorNode) Values() tree.Datums                 { return tree.Datums{} }
func (n *dropOperatorNode) Close(ctx context.Context)           {}
func (n *dropOperatorNode) ReadingOwnWrites()                   {}

// removeOperatorByID is the guts of operator deletion: it removes exactly
// the catalog row for an already-resolved operator OID. All permission and
// existence-tolerance policy lives in DropOperator; callers resolve and
// delete inside the same transaction, so a missing row here is a defect.
func removeOperatorByID(ctx context.Context, cfg *ExecutorConfig, id oid.Oid) error {
	removed, err := cfg.Catalog.DeleteOperatorRow(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return errors.AssertionFailedf("cache lookup failed for operator %d", id)
	}
	return nil
}
