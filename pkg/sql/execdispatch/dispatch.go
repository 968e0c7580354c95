// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package execdispatch forwards fully-resolved DDL statements from the
// coordinator to worker nodes for consistent replay. Statements are
// serialized to SQL text carrying the concrete OIDs assigned locally, so
// every node ends up with identical identifiers.
package execdispatch

import (
	"context"

	"github.com/cockroachdb/logtags"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/util/log"
	"golang.org/x/sync/errgroup"
)

// Conn is a connection to one worker node. The transport behind it belongs
// to the host engine.
type Conn interface {
	// NodeID identifies the worker, for logging.
	NodeID() string

	// ReplayStatement executes a serialized statement on the worker inside
	// the ambient distributed transaction.
	ReplayStatement(ctx context.Context, sql string) error
}

// Dispatcher forwards a validated statement to the worker nodes.
type Dispatcher interface {
	DispatchStatement(ctx context.Context, stmt tree.Statement) error
}

// FanOut dispatches to all workers in parallel; the first failure cancels
// the remaining replays and is returned.
type FanOut struct {
	conns []Conn
}

var _ Dispatcher = (*FanOut)(nil)

// NewFanOut returns a Dispatcher over the given worker connections.
func NewFanOut(conns ...Conn) *FanOut {
	return &FanOut{conns: conns}
}

// DispatchStatement implements the Dispatcher interface.
func (f *FanOut) DispatchStatement(ctx context.Context, stmt tree.Statement) error {
	sql := tree.AsString(stmt)
	g, gCtx := errgroup.WithContext(ctx)
	for _, conn := range f.conns {
		conn := conn
		g.Go(func() error {
			replayCtx := logtags.AddTag(gCtx, "worker", conn.NodeID())
			log.Infof(replayCtx, "dispatching %s: %s", stmt.StatementTag(), sql)
			return conn.ReplayStatement(replayCtx, sql)
		})
	}
	return g.Wait()
}
