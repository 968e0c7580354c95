// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package opdesc holds the operator descriptor.
package opdesc

import (
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/lib/pq/oid"
)

// OperatorDescriptor is the catalog state of one operator. Identity fields
// are immutable after creation; only the owner may change.
type OperatorDescriptor struct {
	ID       oid.Oid
	Name     string
	SchemaID descpb.ID

	// Operand type OIDs. A unary operator leaves one side at InvalidOid.
	LeftTypeID  oid.Oid
	RightTypeID oid.Oid

	// FuncID is the implementing function. Always set on a non-shell row.
	FuncID oid.Oid

	// Optional planner links and selectivity estimators.
	CommutatorID oid.Oid
	NegatorID    oid.Oid
	RestrictID   oid.Oid
	JoinID       oid.Oid

	// Join strategy eligibility flags.
	CanMerge bool
	CanHash  bool

	Owner security.SQLUsername

	// Shell marks a placeholder row auto-created to satisfy a forward
	// commutator or negator link; it is filled in when the linked operator
	// is eventually defined.
	Shell bool
}

// GetID returns the operator OID.
func (d *OperatorDescriptor) GetID() oid.Oid { return d.ID }

// GetName returns the operator symbol.
func (d *OperatorDescriptor) GetName() string { return d.Name }

// GetSchemaID returns the ID of the containing schema.
func (d *OperatorDescriptor) GetSchemaID() descpb.ID { return d.SchemaID }

// GetLeftTypeID returns the left operand type, or InvalidOid for a prefix
// operator.
func (d *OperatorDescriptor) GetLeftTypeID() oid.Oid { return d.LeftTypeID }

// GetRightTypeID returns the right operand type, or InvalidOid for a postfix
// operator.
func (d *OperatorDescriptor) GetRightTypeID() oid.Oid { return d.RightTypeID }

// GetFuncID returns the implementing function OID.
func (d *OperatorDescriptor) GetFuncID() oid.Oid { return d.FuncID }

// GetOwner returns the owning role.
func (d *OperatorDescriptor) GetOwner() security.SQLUsername { return d.Owner }

// MergeJoinable returns the merge-join eligibility flag.
func (d *OperatorDescriptor) MergeJoinable() bool { return d.CanMerge }

// HashJoinable returns the hash-join eligibility flag.
func (d *OperatorDescriptor) HashJoinable() bool { return d.CanHash }

// IsShell reports whether this is a placeholder row.
func (d *OperatorDescriptor) IsShell() bool { return d.Shell }

// Mutable is a mutable reference to an operator descriptor, obtained under a
// row lock through the catalog accessor.
type Mutable struct {
	OperatorDescriptor
}

// NewMutable wraps a descriptor state into a Mutable.
func NewMutable(d OperatorDescriptor) *Mutable {
	return &Mutable{OperatorDescriptor: d}
}

// SetOwner changes the owning role on the in-memory copy. The change is not
// visible until the descriptor is written back.
func (m *Mutable) SetOwner(owner security.SQLUsername) {
	m.Owner = owner
}

// Immutable returns a value copy of the descriptor state.
func (m *Mutable) Immutable() OperatorDescriptor {
	return m.OperatorDescriptor
}
