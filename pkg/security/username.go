// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package security

import (
	"strings"

	"github.com/cockroachdb/redact"
)

// SQLUsername represents a username valid inside SQL. Usernames are
// case-folded and compared by their normalized form; an empty SQLUsername
// denotes "no user".
type SQLUsername struct {
	u string
}

// RootUser is the default superuser.
const RootUser = "root"

// AdminRole is the name of the admin role. Members of admin are treated as
// superusers.
const AdminRole = "admin"

// PublicRole is the special "public" pseudo-role.
const PublicRole = "public"

// MakeSQLUsernameFromPreNormalizedString takes a string containing a
// canonical username and wraps it. The caller asserts the string is already
// normalized.
func MakeSQLUsernameFromPreNormalizedString(u string) SQLUsername {
	return SQLUsername{u: u}
}

// MakeSQLUsernameFromUserInput normalizes the input the way the session
// layer does: lowercase, as SQL identifiers fold.
func MakeSQLUsernameFromUserInput(u string) SQLUsername {
	return SQLUsername{u: strings.ToLower(u)}
}

// RootUserName returns the SQLUsername for RootUser.
func RootUserName() SQLUsername { return SQLUsername{u: RootUser} }

// AdminRoleName returns the SQLUsername for AdminRole.
func AdminRoleName() SQLUsername { return SQLUsername{u: AdminRole} }

// Normalized returns the normalized username string.
func (s SQLUsername) Normalized() string { return s.u }

// Undefined reports whether the username is empty.
func (s SQLUsername) Undefined() bool { return len(s.u) == 0 }

// IsRootUser reports whether the username is that of the root user.
func (s SQLUsername) IsRootUser() bool { return s.u == RootUser }

// IsAdminRole reports whether the username is the admin role.
func (s SQLUsername) IsAdminRole() bool { return s.u == AdminRole }

// SafeValue implements the redact.SafeValue interface. Usernames are not
// considered sensitive.
func (s SQLUsername) SafeValue() {}

var _ redact.SafeValue = SQLUsername{}

func (s SQLUsername) String() string { return s.u }
