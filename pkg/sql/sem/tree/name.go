// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

// Name is an SQL identifier.
type Name string

// Format implements the NodeFormatter interface.
func (n Name) Format(ctx *FmtCtx) {
	ctx.encodeSQLIdent(string(n))
}

func (n Name) String() string { return AsString(n) }

// Normalize normalizes to lowercase. Identifiers in this layer arrive
// pre-folded from the parser, so this is a plain case fold.
func (n Name) Normalize() string { return string(n) }

// OperatorName is the possibly schema-qualified name of an operator. The
// Object part is the operator symbol (e.g. "+", "@@") and is emitted
// verbatim, operator symbols are not identifiers.
type OperatorName struct {
	Schema Name
	Object string

	// ExplicitSchema is true iff the schema was explicitly specified.
	ExplicitSchema bool
}

// MakeOperatorName constructs an unqualified OperatorName.
func MakeOperatorName(symbol string) OperatorName {
	return OperatorName{Object: symbol}
}

// MakeQualifiedOperatorName constructs a schema-qualified OperatorName.
func MakeQualifiedOperatorName(schema Name, symbol string) OperatorName {
	return OperatorName{Schema: schema, Object: symbol, ExplicitSchema: true}
}

// Format implements the NodeFormatter interface.
func (o *OperatorName) Format(ctx *FmtCtx) {
	if o.ExplicitSchema {
		ctx.FormatNode(o.Schema)
		ctx.WriteByte('.')
	}
	ctx.WriteString(o.Object)
}

func (o *OperatorName) String() string { return AsString(o) }

// RoutineName is the possibly qualified name of a function referenced from
// an operator definition.
type RoutineName struct {
	Schema Name
	Object Name

	ExplicitSchema bool
}

// MakeRoutineName constructs an unqualified RoutineName.
func MakeRoutineName(object Name) RoutineName {
	return RoutineName{Object: object}
}

// MakeQualifiedRoutineName constructs a schema-qualified RoutineName.
func MakeQualifiedRoutineName(schema, object Name) RoutineName {
	return RoutineName{Schema: schema, Object: object, ExplicitSchema: true}
}

// Format implements the NodeFormatter interface.
func (r *RoutineName) Format(ctx *FmtCtx) {
	if r.ExplicitSchema {
		ctx.FormatNode(r.Schema)
		ctx.WriteByte('.')
	}
	ctx.FormatNode(r.Object)
}

func (r *RoutineName) String() string { return AsString(r) }

// TypeName is the possibly qualified name of a data type. SetOf records a
// SETOF prefix; set-returning types are valid in some definition contexts
// but never as operator arguments.
type TypeName struct {
	Schema Name
	Object Name
	SetOf  bool

	ExplicitSchema bool
}

// MakeTypeName constructs an unqualified TypeName.
func MakeTypeName(object Name) *TypeName {
	return &TypeName{Object: object}
}

// MakeSetOfTypeName constructs an unqualified set-returning TypeName.
func MakeSetOfTypeName(object Name) *TypeName {
	return &TypeName{Object: object, SetOf: true}
}

// Format implements the NodeFormatter interface.
func (t *TypeName) Format(ctx *FmtCtx) {
	if t.SetOf {
		ctx.WriteString("SETOF ")
	}
	if t.ExplicitSchema {
		ctx.FormatNode(t.Schema)
		ctx.WriteByte('.')
	}
	ctx.FormatNode(t.Object)
}

func (t *TypeName) String() string { return AsString(t) }
