// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package catpb holds the privilege descriptor attached to catalog objects.
package catpb

import (
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/privilege"
)

// UserPrivileges describes the privileges granted to one user on an object.
type UserPrivileges struct {
	UserProto  security.SQLUsername
	Privileges uint32
}

// PrivilegeDescriptor describes the owner of an object and the privilege
// bits granted per user.
type PrivilegeDescriptor struct {
	OwnerProto security.SQLUsername
	Users      []UserPrivileges
}

// NewPrivilegeDescriptor returns a privilege descriptor for the given owner.
func NewPrivilegeDescriptor(owner security.SQLUsername) *PrivilegeDescriptor {
	return &PrivilegeDescriptor{OwnerProto: owner}
}

// Owner returns the owner of the object.
func (p *PrivilegeDescriptor) Owner() security.SQLUsername { return p.OwnerProto }

// SetOwner replaces the owner of the object.
func (p *PrivilegeDescriptor) SetOwner(owner security.SQLUsername) { p.OwnerProto = owner }

func (p *PrivilegeDescriptor) findUser(user security.SQLUsername) *UserPrivileges {
	for i := range p.Users {
		if p.Users[i].UserProto == user {
			return &p.Users[i]
		}
	}
	return nil
}

// Grant adds new privileges to this descriptor for a given user.
func (p *PrivilegeDescriptor) Grant(user security.SQLUsername, kind privilege.Kind) {
	u := p.findUser(user)
	if u == nil {
		p.Users = append(p.Users, UserPrivileges{UserProto: user})
		u = &p.Users[len(p.Users)-1]
	}
	u.Privileges |= kind.Mask()
}

// CheckPrivilege returns true if the user has the given privilege on the
// object. The owner implicitly holds all privileges.
func (p *PrivilegeDescriptor) CheckPrivilege(user security.SQLUsername, kind privilege.Kind) bool {
	if user == p.OwnerProto {
		return true
	}
	for _, probe := range []security.SQLUsername{
		user, security.MakeSQLUsernameFromPreNormalizedString(security.PublicRole),
	} {
		if u := p.findUser(probe); u != nil {
			if u.Privileges&(kind.Mask()|privilege.ALL.Mask()) != 0 {
				return true
			}
		}
	}
	return false
}
