// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"
	"strings"

	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgnotice"
	"github.com/keldadb/kelda/pkg/sql/privilege"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/util/log"
	"github.com/lib/pq/oid"
)

type createOperatorNode struct {
	n *tree.CreateOperator
}

// Use to satisfy the linter.
var _ planNode = &createOperatorNode{n: nil}

// CreateOperator creates an operator: a symbolic name bound to an
// implementing function over one or two operand types.
func (p *planner) CreateOperator(ctx context.Context, n *tree.CreateOperator) (planNode, error) {
	return &createOperatorNode{n: n}, nil
}

func (n *createOperatorNode) startExec(params runParams) error {
	p := params.p
	ctx := params.ctx
	cat := p.ExecCfg().Catalog

	// Resolve the target schema and check creation rights on it.
	sc, err := cat.ResolveCreationSchema(ctx, &n.n.Name)
	if err != nil {
		return err
	}
	if err := p.CheckPrivilege(ctx, sc, privilege.CREATE); err != nil {
		return err
	}

	def, err := p.extractOperatorOptions(ctx, n.n.Options)
	if err != nil {
		return err
	}
	if def.function == nil {
		return pgerror.New(pgcode.InvalidFunctionDefinition,
			"operator procedure must be specified")
	}

	// Transform operand type names to OIDs. An absent slot stays at
	// InvalidOid, making the operator unary on that side.
	var leftTypeID, rightTypeID oid.Oid
	if def.leftType != nil {
		if leftTypeID, err = cat.ResolveType(ctx, def.leftType); err != nil {
			return err
		}
	}
	if def.rightType != nil {
		if rightTypeID, err = cat.ResolveType(ctx, def.rightType); err != nil {
			return err
		}
	}

	// The creation service does the actual work. It reports the OIDs it
	// assigned, including those of auto-created shell rows for forward
	// commutator/negator links.
	ids, err := cat.CreateOperator(ctx, catalog.CreateOperatorArgs{
		Name:           n.n.Name.Object,
		SchemaID:       sc.GetID(),
		Owner:          p.User(),
		LeftTypeID:     leftTypeID,
		RightTypeID:    rightTypeID,
		FunctionName:   *def.function,
		CommutatorName: def.commutator,
		NegatorName:    def.negator,
		RestrictName:   def.restrict,
		JoinName:       def.join,
		CanMerge:       def.canMerge,
		CanHash:        def.canHash,
		OperatorOid:    n.n.OperatorOid,
		CommutatorOid:  n.n.CommutatorOid,
		NegatorOid:     n.n.NegatorOid,
	})
	if err != nil {
		return err
	}

	log.Infof(ctx, "created operator %s (%d) as %s",
		n.n.Name.String(), ids.OperatorOid, p.User())

	// On the coordinator, forward the statement stamped with the assigned
	// OIDs so the workers replay the creation with identical identifiers.
	replay := *n.n
	replay.OperatorOid = ids.OperatorOid
	replay.CommutatorOid = ids.CommutatorOid
	replay.NegatorOid = ids.NegatorOid
	return p.maybeDispatchToWorkers(ctx, &replay)
}

func (n *createOperatorNode) Next(params runParams) (bool, error) { return false, nil }
func (n *createOperatorNode) Values() tree.Datums                 { return tree.Datums{} }
func (n *createOperatorNode) Close(ctx context.Context)           {}
func (n *createOperatorNode) ReadingOwnWrites()                   {}

// operatorDefinition is the result of scanning a CREATE OPERATOR definition
// list.
type operatorDefinition struct {
	leftType  *tree.TypeName
	rightType *tree.TypeName

	function   *tree.RoutineName
	commutator *tree.RoutineName
	negator    *tree.RoutineName
	restrict   *tree.RoutineName
	join       *tree.RoutineName

	canMerge bool
	canHash  bool
}

type operatorOptionKey int

const (
	optUnknown operatorOptionKey = iota
	optLeftArg
	optRightArg
	optProcedure
	optCommutator
	optNegator
	optRestrict
	optJoin
	optHashes
	optMerges
	optSort1
	optSort2
	optLtCmp
	optGtCmp
)

var operatorOptionKeys = map[string]operatorOptionKey{
	"leftarg":    optLeftArg,
	"rightarg":   optRightArg,
	"procedure":  optProcedure,
	"commutator": optCommutator,
	"negator":    optNegator,
	"restrict":   optRestrict,
	"join":       optJoin,
	"hashes":     optHashes,
	"merges":     optMerges,
	// Obsolete option keys, accepted for backward compatibility.
	"sort1": optSort1,
	"sort2": optSort2,
	"ltcmp": optLtCmp,
	"gtcmp": optGtCmp,
}

// extractOperatorOptions scans the definition list once and extracts the
// information the creation service needs. Unrecognized keys produce a
// client warning and are otherwise ignored.
func (p *planner) extractOperatorOptions(
	ctx context.Context, opts tree.OperatorOptions,
) (operatorDefinition, error) {
	var def operatorDefinition
	for i := range opts {
		opt := &opts[i]
		switch operatorOptionKeys[strings.ToLower(string(opt.Key))] {
		case optLeftArg:
			t, err := optionTypeName(opt)
			if err != nil {
				return def, err
			}
			def.leftType = t
		case optRightArg:
			t, err := optionTypeName(opt)
			if err != nil {
				return def, err
			}
			def.rightType = t
		case optProcedure:
			r, err := optionRoutineName(opt)
			if err != nil {
				return def, err
			}
			def.function = r
		case optCommutator:
			r, err := optionRoutineName(opt)
			if err != nil {
				return def, err
			}
			def.commutator = r
		case optNegator:
			r, err := optionRoutineName(opt)
			if err != nil {
				return def, err
			}
			def.negator = r
		case optRestrict:
			r, err := optionRoutineName(opt)
			if err != nil {
				return def, err
			}
			def.restrict = r
		case optJoin:
			r, err := optionRoutineName(opt)
			if err != nil {
				return def, err
			}
			def.join = r
		case optHashes:
			def.canHash = optionBool(opt)
		case optMerges:
			def.canMerge = optionBool(opt)
		case optSort1, optSort2, optLtCmp, optGtCmp:
			// These obsolete options are taken as meaning canMerge.
			def.canMerge = true
		default:
			p.BufferClientNotice(ctx, pgnotice.NewWithSeverityf(
				pgnotice.DisplaySeverityWarning,
				"operator attribute %q not recognized", opt.Key))
		}
	}
	return def, nil
}

func optionTypeName(opt *tree.OperatorOption) (*tree.TypeName, error) {
	if opt.Type == nil {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue,
			"%s requires a type name", opt.Key)
	}
	if opt.Type.SetOf {
		return nil, pgerror.New(pgcode.InvalidFunctionDefinition,
			"setof type not allowed for operator argument")
	}
	return opt.Type, nil
}

func optionRoutineName(opt *tree.OperatorOption) (*tree.RoutineName, error) {
	if opt.Routine == nil {
		return nil, pgerror.Newf(pgcode.InvalidParameterValue,
			"%s requires a qualified name", opt.Key)
	}
	return opt.Routine, nil
}

// optionBool reads a boolean option value. A bare key with no value means
// true.
func optionBool(opt *tree.OperatorOption) bool {
	if opt.BoolVal == nil {
		return true
	}
	return *opt.BoolVal
}
