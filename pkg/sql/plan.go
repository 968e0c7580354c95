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
	"github.com/keldadb/kelda/pkg/sql/execdispatch"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sessiondata"
	"github.com/lib/pq/oid"
)

// ExecutorConfig groups the engine services the command layer runs against.
type ExecutorConfig struct {
	Catalog     catalog.Accessor
	RoleManager catalog.RoleManager

	// ClusterRole decides whether validated statements are forwarded to
	// workers after local success. Dispatcher may be nil on workers and
	// single-node deployments.
	ClusterRole sessiondata.ClusterRole
	Dispatcher  execdispatch.Dispatcher
}

// MakeExecutorConfig wires an ExecutorConfig and registers this layer's
// droppers with the catalog's deletion engine.
func MakeExecutorConfig(
	cat catalog.Accessor,
	roles catalog.RoleManager,
	clusterRole sessiondata.ClusterRole,
	dispatcher execdispatch.Dispatcher,
) *ExecutorConfig {
	cfg := &ExecutorConfig{
		Catalog:     cat,
		RoleManager: roles,
		ClusterRole: clusterRole,
		Dispatcher:  dispatcher,
	}
	if reg, ok := cat.(catalog.DropperRegistry); ok {
		reg.RegisterDropper(catalog.OperatorClass, func(ctx context.Context, id oid.Oid) error {
			return removeOperatorByID(ctx, cfg, id)
		})
	}
	return cfg
}

// runParams is a struct containing all parameters passed to planNode
// execution.
type runParams struct {
	// context.Context for this method call.
	ctx context.Context

	// planner associated with this execution.
	p *planner
}

// SessionData gives convenient access to the runParams's SessionData.
func (r *runParams) SessionData() *sessiondata.SessionData {
	return r.p.SessionData()
}

// ExecCfg gives convenient access to the runParams's ExecutorConfig.
func (r *runParams) ExecCfg() *ExecutorConfig {
	return r.p.ExecCfg()
}

// planNode defines the interface for executing a statement or portion of a
// statement.
type planNode interface {
	startExec(params runParams) error

	// Next performs one unit of work, returning false if an error is
	// encountered or if there is no more work to do. DDL statements return
	// no rows.
	Next(params runParams) (bool, error)

	// Values returns the values at the current row.
	Values() tree.Datums

	// Close releases the resources associated with the node.
	Close(ctx context.Context)
}

// zeroNode is a planNode with no results and no work, used when planning
// determines a statement is a no-op.
type zeroNode struct{}

func newZeroNode() planNode { return &zeroNode{} }

func (*zeroNode) startExec(params runParams) error    { return nil }
func (*zeroNode) Next(params runParams) (bool, error) { return false, nil }
func (*zeroNode) Values() tree.Datums                 { return nil }
func (*zeroNode) Close(ctx context.Context)           {}

// planner is the placeholder for all the state of a statement's planning
// and execution.
type planner struct {
	execCfg *ExecutorConfig
	sd      *sessiondata.SessionData

	noticeBuf noticeBuffer
}

// NewPlanner returns a planner bound to a session user.
func NewPlanner(execCfg *ExecutorConfig, user security.SQLUsername) *planner {
	return &planner{
		execCfg: execCfg,
		sd:      &sessiondata.SessionData{UserProto: user},
	}
}

// ExecCfg returns the executor configuration.
func (p *planner) ExecCfg() *ExecutorConfig { return p.execCfg }

// SessionData returns the session parameters.
func (p *planner) SessionData() *sessiondata.SessionData { return p.sd }

// User returns the session user.
func (p *planner) User() security.SQLUsername { return p.sd.User() }

// RunDDL plans and executes one DDL statement of the operator subset. This
// is the entry point used by the statement executor and by worker-side
// replay.
func (p *planner) RunDDL(ctx context.Context, stmt tree.Statement) error {
	var node planNode
	var err error
	switch n := stmt.(type) {
	case *tree.CreateOperator:
		node, err = p.CreateOperator(ctx, n)
	case *tree.DropOperator:
		node, err = p.DropOperator(ctx, n)
	case *tree.AlterOperatorOwner:
		node, err = p.AlterOperatorOwner(ctx, n)
	default:
		return errors.AssertionFailedf("unsupported statement %T", stmt)
	}
	if err != nil {
		return err
	}
	defer node.Close(ctx)
	return node.startExec(runParams{ctx: ctx, p: p})
}

// maybeDispatchToWorkers forwards a validated statement to the workers when
// running on the coordinator. No-op on workers and single-node deployments.
func (p *planner) maybeDispatchToWorkers(ctx context.Context, stmt tree.Statement) error {
	if p.execCfg.ClusterRole != sessiondata.Coordinator || p.execCfg.Dispatcher == nil {
		return nil
	}
	return p.execCfg.Dispatcher.DispatchStatement(ctx, stmt)
}
