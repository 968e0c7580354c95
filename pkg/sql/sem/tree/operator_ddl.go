// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"github.com/keldadb/kelda/pkg/security"
	"github.com/lib/pq/oid"
)

// Statement represents a statement of the DDL subset handled by this layer.
type Statement interface {
	NodeFormatter

	// StatementTag is the tag reported to the client on completion.
	StatementTag() string
}

// DropBehavior represents whether a deletion cascades to dependent objects.
type DropBehavior int

// DropBehavior values.
const (
	DropDefault DropBehavior = iota
	DropRestrict
	DropCascade
)

var dropBehaviorName = [...]string{
	DropDefault:  "",
	DropRestrict: "RESTRICT",
	DropCascade:  "CASCADE",
}

func (d DropBehavior) String() string {
	return dropBehaviorName[d]
}

// OperatorOption is a single (key, value) element of a CREATE OPERATOR
// definition list. At most one payload field is set; which one depends on
// the key. Keys are matched case-insensitively and unrecognized keys are
// tolerated by the handler, so this stays a raw key rather than an enum.
type OperatorOption struct {
	Key Name

	// Type is set for operand type keys (leftarg, rightarg).
	Type *TypeName
	// Routine is set for keys naming a function or operator (procedure,
	// commutator, negator, restrict, join).
	Routine *RoutineName
	// BoolVal is set for boolean keys (hashes, merges).
	BoolVal *bool
}

// Format implements the NodeFormatter interface.
func (o *OperatorOption) Format(ctx *FmtCtx) {
	ctx.FormatNode(o.Key)
	switch {
	case o.Type != nil:
		ctx.WriteString(" = ")
		ctx.FormatNode(o.Type)
	case o.Routine != nil:
		ctx.WriteString(" = ")
		ctx.FormatNode(o.Routine)
	case o.BoolVal != nil:
		if *o.BoolVal {
			ctx.WriteString(" = true")
		} else {
			ctx.WriteString(" = false")
		}
	}
}

// OperatorOptions is the ordered definition list of a CREATE OPERATOR
// statement.
type OperatorOptions []OperatorOption

// Format implements the NodeFormatter interface.
func (o *OperatorOptions) Format(ctx *FmtCtx) {
	for i := range *o {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.FormatNode(&(*o)[i])
	}
}

// CreateOperator represents a CREATE OPERATOR statement.
type CreateOperator struct {
	Name    OperatorName
	Options OperatorOptions

	// The fields below are zero on an original statement. The coordinator
	// stamps the locally assigned OIDs before forwarding the statement, so
	// that workers replay the creation with identical identifiers.
	OperatorOid   oid.Oid
	CommutatorOid oid.Oid
	NegatorOid    oid.Oid
}

var _ Statement = (*CreateOperator)(nil)

// Format implements the NodeFormatter interface.
func (n *CreateOperator) Format(ctx *FmtCtx) {
	ctx.WriteString("CREATE OPERATOR ")
	ctx.FormatNode(&n.Name)
	ctx.WriteString(" (")
	ctx.FormatNode(&n.Options)
	ctx.WriteByte(')')
	if n.OperatorOid != 0 {
		ctx.Printf(" WITH OID %d", n.OperatorOid)
		if n.CommutatorOid != 0 {
			ctx.Printf(" COMMUTATOR OID %d", n.CommutatorOid)
		}
		if n.NegatorOid != 0 {
			ctx.Printf(" NEGATOR OID %d", n.NegatorOid)
		}
	}
}

// StatementTag implements the Statement interface.
func (*CreateOperator) StatementTag() string { return "CREATE OPERATOR" }

// DropOperator represents a DROP OPERATOR statement. A nil operand slot
// stands for NONE, the placeholder marking the missing side of a unary
// operator.
type DropOperator struct {
	Name     OperatorName
	LeftArg  *TypeName
	RightArg *TypeName

	IfExists     bool
	DropBehavior DropBehavior
}

var _ Statement = (*DropOperator)(nil)

func formatOperandTypes(ctx *FmtCtx, left, right *TypeName) {
	ctx.WriteString(" (")
	if left == nil {
		ctx.WriteString("NONE")
	} else {
		ctx.FormatNode(left)
	}
	ctx.WriteString(", ")
	if right == nil {
		ctx.WriteString("NONE")
	} else {
		ctx.FormatNode(right)
	}
	ctx.WriteByte(')')
}

// Format implements the NodeFormatter interface.
func (n *DropOperator) Format(ctx *FmtCtx) {
	ctx.WriteString("DROP OPERATOR ")
	if n.IfExists {
		ctx.WriteString("IF EXISTS ")
	}
	ctx.FormatNode(&n.Name)
	formatOperandTypes(ctx, n.LeftArg, n.RightArg)
	if n.DropBehavior != DropDefault {
		ctx.WriteByte(' ')
		ctx.WriteString(n.DropBehavior.String())
	}
}

// StatementTag implements the Statement interface.
func (*DropOperator) StatementTag() string { return "DROP OPERATOR" }

// AlterOperatorOwner represents an ALTER OPERATOR ... OWNER TO statement.
type AlterOperatorOwner struct {
	Name     OperatorName
	LeftArg  *TypeName
	RightArg *TypeName

	NewOwner security.SQLUsername
}

var _ Statement = (*AlterOperatorOwner)(nil)

// Format implements the NodeFormatter interface.
func (n *AlterOperatorOwner) Format(ctx *FmtCtx) {
	ctx.WriteString("ALTER OPERATOR ")
	ctx.FormatNode(&n.Name)
	formatOperandTypes(ctx, n.LeftArg, n.RightArg)
	ctx.WriteString(" OWNER TO ")
	ctx.encodeSQLIdent(n.NewOwner.Normalized())
}

// StatementTag implements the Statement interface.
func (*AlterOperatorOwner) StatementTag() string { return "ALTER OPERATOR" }
