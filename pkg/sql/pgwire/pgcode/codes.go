// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package pgcode defines the PostgreSQL SQLSTATE codes surfaced by the SQL
// layer.
package pgcode

// Code is a wrapper around a SQLSTATE 5-character code.
type Code struct {
	code string
}

// MakeCode converts a 5-character SQLSTATE string into a Code.
func MakeCode(code string) Code { return Code{code: code} }

// String returns the underlying SQLSTATE code.
func (c Code) String() string { return c.code }

// The codes used by this layer. The list is a subset of the full SQLSTATE
// table; add entries as new command paths need them.
var (
	SuccessfulCompletion       = MakeCode("00000")
	Warning                    = MakeCode("01000")
	InvalidParameterValue      = MakeCode("22023")
	InsufficientPrivilege      = MakeCode("42501")
	SyntaxError                = MakeCode("42601")
	InvalidFunctionDefinition  = MakeCode("42P13")
	UndefinedFunction          = MakeCode("42883")
	InvalidSchemaName          = MakeCode("3F000")
	UndefinedObject            = MakeCode("42704")
	DuplicateObject            = MakeCode("42710")
	DuplicateFunction          = MakeCode("42723")
	DependentObjectsStillExist = MakeCode("2BP01")
	FeatureNotSupported        = MakeCode("0A000")
	Internal                   = MakeCode("XX000")

	// Uncategorized is the code reported for errors that carry no candidate
	// code of their own.
	Uncategorized = MakeCode("XXUUU")
)
