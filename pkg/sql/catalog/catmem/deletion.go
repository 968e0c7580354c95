// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package catmem

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
)

// PerformDeletion implements catalog.Accessor. It walks the dependency graph
// from the target: dependents block the deletion under RESTRICT and are
// removed first under CASCADE. Row removal itself is dispatched to the
// dropper registered for the object's class, and all edges touching a
// removed object are cleaned up with it.
func (c *Catalog) PerformDeletion(
	ctx context.Context, addr catalog.ObjectAddress, behavior tree.DropBehavior,
) error {
	c.mu.Lock()
	dependents := c.dependentsLocked(addr)
	c.mu.Unlock()

	if len(dependents) > 0 {
		if behavior != tree.DropCascade {
			return sqlerrors.NewDependentObjectErrorf(
				"cannot drop %s %d because %d other objects depend on it",
				addr.ClassID, addr.ObjectID, len(dependents))
		}
		for _, dep := range dependents {
			if err := c.PerformDeletion(ctx, dep, behavior); err != nil {
				return err
			}
		}
	}

	c.mu.Lock()
	dropper := c.droppers[addr.ClassID]
	c.mu.Unlock()
	if dropper == nil {
		return errors.AssertionFailedf("no dropper registered for class %s", addr.ClassID)
	}
	if err := dropper(ctx, addr.ObjectID); err != nil {
		return err
	}

	c.mu.Lock()
	c.removeEdgesLocked(addr)
	c.mu.Unlock()
	return nil
}

func (c *Catalog) dependentsLocked(addr catalog.ObjectAddress) []catalog.ObjectAddress {
	var ret []catalog.ObjectAddress
	seen := map[catalog.ObjectAddress]struct{}{}
	for _, edge := range c.deps {
		if edge.referenced.ClassID == addr.ClassID && edge.referenced.ObjectID == addr.ObjectID {
			if _, ok := seen[edge.dependent]; ok {
				continue
			}
			seen[edge.dependent] = struct{}{}
			ret = append(ret, edge.dependent)
		}
	}
	return ret
}

func (c *Catalog) removeEdgesLocked(addr catalog.ObjectAddress) {
	filtered := c.deps[:0]
	for _, edge := range c.deps {
		if edge.dependent == addr || edge.referenced == addr {
			continue
		}
		filtered = append(filtered, edge)
	}
	c.deps = filtered
	delete(c.ownerDeps, addr)
}
