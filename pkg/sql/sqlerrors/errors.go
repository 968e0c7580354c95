// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package sqlerrors exports errors which can occur in the sql package.
package sqlerrors

import (
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/privilege"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
)

// OperatorSignature renders an operator name with its operand types the way
// error messages and notices spell it. A nil operand renders as NONE.
func OperatorSignature(name *tree.OperatorName, left, right *tree.TypeName) string {
	ctx := tree.NewFmtCtx()
	ctx.FormatNode(name)
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
	return ctx.CloseAndGetString()
}

// NewUndefinedOperatorError returns the error for a missing operator.
func NewUndefinedOperatorError(name *tree.OperatorName, left, right *tree.TypeName) error {
	return pgerror.Newf(pgcode.UndefinedObject,
		"operator %s does not exist", OperatorSignature(name, left, right))
}

// NewUndefinedTypeError returns the error for a missing type.
func NewUndefinedTypeError(name *tree.TypeName) error {
	return pgerror.Newf(pgcode.UndefinedObject, "type %q does not exist", tree.AsString(name))
}

// NewUndefinedFunctionError returns the error for a missing function.
func NewUndefinedFunctionError(name *tree.RoutineName) error {
	return pgerror.Newf(pgcode.UndefinedFunction, "function %q does not exist", tree.AsString(name))
}

// NewDuplicateOperatorError returns the error for an operator that already
// exists with the same name and operand types.
func NewDuplicateOperatorError(name string) error {
	return pgerror.Newf(pgcode.DuplicateObject, "operator %s already exists", name)
}

// NewDependentObjectErrorf returns the error for a deletion blocked by
// dependent objects under RESTRICT semantics.
func NewDependentObjectErrorf(format string, args ...interface{}) error {
	return pgerror.Newf(pgcode.DependentObjectsStillExist, format, args...)
}

// NewInsufficientPrivilegeOnSchemaError returns the error for a user lacking
// a privilege on a schema.
func NewInsufficientPrivilegeOnSchemaError(
	user security.SQLUsername, kind privilege.Kind, schema string,
) error {
	return pgerror.Newf(pgcode.InsufficientPrivilege,
		"user %s does not have %s privilege on schema %s", user.Normalized(), kind, schema)
}
