// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package privilege outlines the basic privilege system for the SQL layer.
package privilege

// Kind defines a privilege. This is output by the parser layer of the host
// engine and used here for ACL checks on catalog objects.
type Kind uint32

// List of privileges. ALL is specifically encoded so that it will always be
// the result of all other privileges OR'd together.
const (
	ALL Kind = iota + 1
	CREATE
	DROP
	USAGE
)

var kindNames = map[Kind]string{
	ALL:    "ALL",
	CREATE: "CREATE",
	DROP:   "DROP",
	USAGE:  "USAGE",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Mask returns the bitmask for a given privilege.
func (k Kind) Mask() uint32 {
	return 1 << k
}
