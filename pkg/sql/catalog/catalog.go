// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package catalog defines the contracts through which the DDL command layer
// reaches the rest of the engine: descriptor access, object creation and
// deletion, dependency bookkeeping and role membership. The command handlers
// never touch catalog storage directly.
package catalog

import (
	"context"

	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog/catpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/opdesc"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
)

// ClassID identifies a catalog class, the equivalent of a system table, for
// generic object addressing.
type ClassID int

// The catalog classes known to this layer.
const (
	OperatorClass ClassID = iota + 1
	SchemaClass
	TypeClass
	RoutineClass
)

func (c ClassID) String() string {
	switch c {
	case OperatorClass:
		return "operator"
	case SchemaClass:
		return "schema"
	case TypeClass:
		return "type"
	case RoutineClass:
		return "routine"
	}
	return "unknown"
}

// ObjectAddress names a catalog object for generic deletion and dependency
// tracking.
type ObjectAddress struct {
	ClassID  ClassID
	ObjectID oid.Oid
	SubID    int
}

// SchemaDescriptor is the read-only view of a schema (namespace).
type SchemaDescriptor interface {
	GetID() descpb.ID
	GetName() string
	GetPrivileges() *catpb.PrivilegeDescriptor
}

// OperatorDescriptor is the read-only view of an operator.
type OperatorDescriptor interface {
	GetID() oid.Oid
	GetName() string
	GetSchemaID() descpb.ID
	GetLeftTypeID() oid.Oid
	GetRightTypeID() oid.Oid
	GetFuncID() oid.Oid
	GetOwner() security.SQLUsername
	MergeJoinable() bool
	HashJoinable() bool
}

// CreateOperatorArgs carries the fully resolved fields of a new operator to
// the catalog creation service.
type CreateOperatorArgs struct {
	Name     string
	SchemaID descpb.ID
	Owner    security.SQLUsername

	// Operand type OIDs; InvalidOid marks the missing side of a unary
	// operator. At least one side must be set.
	LeftTypeID  oid.Oid
	RightTypeID oid.Oid

	// FunctionName is the implementing function; resolution against the
	// routine namespace happens inside the service.
	FunctionName tree.RoutineName

	// Optional links. A named commutator or negator that does not exist yet
	// is auto-created as a shell row.
	CommutatorName *tree.RoutineName
	NegatorName    *tree.RoutineName
	RestrictName   *tree.RoutineName
	JoinName       *tree.RoutineName

	CanMerge bool
	CanHash  bool

	// Preset OIDs, set during replay on worker nodes so that the whole
	// cluster assigns identical identifiers. Zero means "allocate".
	OperatorOid   oid.Oid
	CommutatorOid oid.Oid
	NegatorOid    oid.Oid
}

// CreatedOperatorIDs reports the identifiers assigned by the creation
// service, including those of auto-created shell rows.
type CreatedOperatorIDs struct {
	OperatorOid   oid.Oid
	CommutatorOid oid.Oid
	NegatorOid    oid.Oid
}

// Accessor is the catalog surface consumed by the operator command handlers.
// Implementations run inside the ambient transaction of the current
// statement.
type Accessor interface {
	// ResolveCreationSchema resolves the target schema of a qualified
	// operator name, defaulting when no explicit schema is given.
	ResolveCreationSchema(ctx context.Context, name *tree.OperatorName) (SchemaDescriptor, error)

	// GetSchemaByID fetches a schema descriptor by ID.
	GetSchemaByID(ctx context.Context, id descpb.ID) (SchemaDescriptor, error)

	// ResolveType resolves a type name to its OID, failing with
	// UndefinedObject when the type does not exist.
	ResolveType(ctx context.Context, name *tree.TypeName) (oid.Oid, error)

	// LookupOperator resolves an operator by name and exact operand types.
	// A nil operand stands for the missing side of a unary operator.
	// Returns InvalidOid without error when no such operator exists;
	// tolerate-missing policy lives in the callers.
	LookupOperator(ctx context.Context, name *tree.OperatorName, leftType, rightType *tree.TypeName) (oid.Oid, error)

	// GetOperator fetches a read-only operator descriptor.
	GetOperator(ctx context.Context, id oid.Oid) (OperatorDescriptor, error)

	// GetOperatorForUpdate fetches a mutable operator descriptor under a
	// row-level exclusive lock, serializing concurrent mutations of the
	// same row. Returns nil without error when the row does not exist.
	GetOperatorForUpdate(ctx context.Context, id oid.Oid) (*opdesc.Mutable, error)

	// WriteOperator persists a mutated descriptor previously obtained from
	// GetOperatorForUpdate.
	WriteOperator(ctx context.Context, desc *opdesc.Mutable) error

	// CreateOperator runs the catalog creation service.
	CreateOperator(ctx context.Context, args CreateOperatorArgs) (CreatedOperatorIDs, error)

	// DeleteOperatorRow removes exactly the catalog row for the given
	// operator OID. No permission or existence-tolerance logic; reports
	// whether a row was removed.
	DeleteOperatorRow(ctx context.Context, id oid.Oid) (removed bool, _ error)

	// PerformDeletion deletes an object through the dependency engine,
	// cascading to or blocking on dependents per the drop behavior.
	PerformDeletion(ctx context.Context, addr ObjectAddress, behavior tree.DropBehavior) error

	// ChangeOwnerDependency resets the owned-by dependency edge of an
	// object so role-deletion logic stays consistent.
	ChangeOwnerDependency(ctx context.Context, addr ObjectAddress, newOwner security.SQLUsername) error
}

// ObjectDropper removes the catalog row(s) for a resolved object of one
// class. The dependency engine invokes droppers during cascaded deletion.
type ObjectDropper func(ctx context.Context, id oid.Oid) error

// DropperRegistry is implemented by deletion engines that dispatch row
// removal per catalog class.
type DropperRegistry interface {
	RegisterDropper(class ClassID, dropper ObjectDropper)
}

// RoleManager exposes role existence and membership.
type RoleManager interface {
	// RoleExists reports whether the role is defined.
	RoleExists(ctx context.Context, role security.SQLUsername) (bool, error)

	// MemberOfWithAdminOption looks up all roles (direct and indirect) that
	// member is a member of, mapped to whether membership carries the admin
	// option.
	MemberOfWithAdminOption(ctx context.Context, member security.SQLUsername) (map[security.SQLUsername]bool, error)

	// IsSuperuser reports whether the role bypasses privilege checks.
	IsSuperuser(ctx context.Context, role security.SQLUsername) (bool, error)
}
