// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package catmem

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/opdesc"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
)

// CreateOperator implements catalog.Accessor. It resolves the implementing
// function and the optional estimators, enforces signature uniqueness within
// the schema, honors preset OIDs during replay, auto-creates shell rows for
// forward commutator/negator links and back-links them, and records the
// owner and reference dependency edges of every row it writes.
func (c *Catalog) CreateOperator(
	_ context.Context, args catalog.CreateOperatorArgs,
) (catalog.CreatedOperatorIDs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids catalog.CreatedOperatorIDs

	if args.LeftTypeID == descpb.InvalidOid && args.RightTypeID == descpb.InvalidOid {
		return ids, pgerror.New(pgcode.InvalidFunctionDefinition,
			"at least one of leftarg or rightarg must be specified")
	}
	if _, ok := c.schemasByID[args.SchemaID]; !ok {
		return ids, errors.AssertionFailedf("schema %d not found", args.SchemaID)
	}

	fnID, err := c.resolveRoutineLocked(&args.FunctionName)
	if err != nil {
		return ids, err
	}
	var restrictID, joinID oid.Oid
	if args.RestrictName != nil {
		if restrictID, err = c.resolveRoutineLocked(args.RestrictName); err != nil {
			return ids, err
		}
	}
	if args.JoinName != nil {
		if joinID, err = c.resolveRoutineLocked(args.JoinName); err != nil {
			return ids, err
		}
	}

	key := operatorKey{
		schemaID:    args.SchemaID,
		name:        args.Name,
		leftTypeID:  args.LeftTypeID,
		rightTypeID: args.RightTypeID,
	}

	// A forward link from an earlier creation may have left a shell row with
	// this signature; defining the operator fills the shell in place. A
	// non-shell row with the same signature is a duplicate.
	var shell *operatorItem
	if existingID := c.operatorsByKey[key]; existingID != descpb.InvalidOid {
		item := c.getOperatorLocked(existingID)
		if !item.desc.Shell {
			return ids, sqlerrors.NewDuplicateOperatorError(args.Name)
		}
		shell = item
	}

	opID := args.OperatorOid
	switch {
	case shell != nil:
		if opID != descpb.InvalidOid && opID != shell.desc.ID {
			return ids, errors.AssertionFailedf(
				"preset OID %d conflicts with shell operator %d", opID, shell.desc.ID)
		}
		opID = shell.desc.ID
	case opID == descpb.InvalidOid:
		opID = c.allocOidLocked()
	default:
		if c.getOperatorLocked(opID) != nil {
			return ids, errors.AssertionFailedf("preset OID %d already in use", opID)
		}
	}
	ids.OperatorOid = opID

	// Resolve the commutator against swapped operand types, the negator
	// against the same types. Either may name an operator that does not
	// exist yet, producing a shell row, or the operator being created
	// itself (a self-commutator).
	if args.CommutatorName != nil {
		commKey := operatorKey{
			schemaID:    args.SchemaID,
			name:        string(args.CommutatorName.Object),
			leftTypeID:  args.RightTypeID,
			rightTypeID: args.LeftTypeID,
		}
		if commKey == key {
			ids.CommutatorOid = opID
		} else if existing := c.operatorsByKey[commKey]; existing != descpb.InvalidOid {
			ids.CommutatorOid = existing
		} else {
			ids.CommutatorOid, err = c.makeShellLocked(commKey, args.Owner, args.CommutatorOid)
			if err != nil {
				return ids, err
			}
		}
	}
	if args.NegatorName != nil {
		negKey := operatorKey{
			schemaID:    args.SchemaID,
			name:        string(args.NegatorName.Object),
			leftTypeID:  args.LeftTypeID,
			rightTypeID: args.RightTypeID,
		}
		if negKey == key {
			return ids, pgerror.New(pgcode.InvalidFunctionDefinition,
				"an operator cannot be its own negator")
		}
		if existing := c.operatorsByKey[negKey]; existing != descpb.InvalidOid {
			ids.NegatorOid = existing
		} else {
			ids.NegatorOid, err = c.makeShellLocked(negKey, args.Owner, args.NegatorOid)
			if err != nil {
				return ids, err
			}
		}
	}

	desc := opdesc.OperatorDescriptor{
		ID:           opID,
		Name:         args.Name,
		SchemaID:     args.SchemaID,
		LeftTypeID:   args.LeftTypeID,
		RightTypeID:  args.RightTypeID,
		FuncID:       fnID,
		CommutatorID: ids.CommutatorOid,
		NegatorID:    ids.NegatorOid,
		RestrictID:   restrictID,
		JoinID:       joinID,
		CanMerge:     args.CanMerge,
		CanHash:      args.CanHash,
		Owner:        args.Owner,
	}
	if shell != nil {
		shell.desc = desc
	} else {
		c.operators.ReplaceOrInsert(&operatorItem{desc: desc})
		c.operatorsByKey[key] = opID
	}

	// Back-link the commutator and negator rows to the new operator. An
	// already-linked row is left alone.
	if ids.CommutatorOid != descpb.InvalidOid && ids.CommutatorOid != opID {
		if back := c.getOperatorLocked(ids.CommutatorOid); back != nil && back.desc.CommutatorID == descpb.InvalidOid {
			back.desc.CommutatorID = opID
		}
	}
	if ids.NegatorOid != descpb.InvalidOid {
		if back := c.getOperatorLocked(ids.NegatorOid); back != nil && back.desc.NegatorID == descpb.InvalidOid {
			back.desc.NegatorID = opID
		}
	}

	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: opID}
	c.ownerDeps[addr] = args.Owner
	c.deps = append(c.deps,
		depEdge{dependent: addr, referenced: catalog.ObjectAddress{ClassID: catalog.SchemaClass, ObjectID: oid.Oid(args.SchemaID)}},
		depEdge{dependent: addr, referenced: catalog.ObjectAddress{ClassID: catalog.RoutineClass, ObjectID: fnID}},
	)

	return ids, nil
}

// makeShellLocked creates a placeholder operator row for a forward link.
func (c *Catalog) makeShellLocked(
	key operatorKey, owner security.SQLUsername, preset oid.Oid,
) (oid.Oid, error) {
	id := preset
	if id == descpb.InvalidOid {
		id = c.allocOidLocked()
	} else if c.getOperatorLocked(id) != nil {
		return descpb.InvalidOid, errors.AssertionFailedf("preset OID %d already in use", id)
	}
	c.operators.ReplaceOrInsert(&operatorItem{desc: opdesc.OperatorDescriptor{
		ID:          id,
		Name:        key.name,
		SchemaID:    key.schemaID,
		LeftTypeID:  key.leftTypeID,
		RightTypeID: key.rightTypeID,
		Owner:       owner,
		Shell:       true,
	}})
	c.operatorsByKey[key] = id
	addr := catalog.ObjectAddress{ClassID: catalog.OperatorClass, ObjectID: id}
	c.ownerDeps[addr] = owner
	c.deps = append(c.deps, depEdge{
		dependent:  addr,
		referenced: catalog.ObjectAddress{ClassID: catalog.SchemaClass, ObjectID: oid.Oid(key.schemaID)},
	})
	return id, nil
}
