// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package catmem implements the catalog contracts over in-memory state. It
// backs embedded deployments and tests; a single mutex stands in for the row
// locks the host engine's transactional catalog takes, which is sufficient
// under the one-writer-per-statement execution model.
package catmem

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog"
	"github.com/keldadb/kelda/pkg/sql/catalog/catpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/descpb"
	"github.com/keldadb/kelda/pkg/sql/catalog/opdesc"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
)

// DefaultSchema is the schema unqualified names resolve into.
const DefaultSchema = "public"

// firstUserOid is where user object OIDs start; lower values are reserved
// for built-ins.
const firstUserOid oid.Oid = 16384

type schemaDescriptor struct {
	id    descpb.ID
	name  string
	privs *catpb.PrivilegeDescriptor
}

var _ catalog.SchemaDescriptor = (*schemaDescriptor)(nil)

func (s *schemaDescriptor) GetID() descpb.ID                        { return s.id }
func (s *schemaDescriptor) GetName() string                         { return s.name }
func (s *schemaDescriptor) GetPrivileges() *catpb.PrivilegeDescriptor { return s.privs }

// operatorItem orders operator rows by OID inside the btree.
type operatorItem struct {
	desc opdesc.OperatorDescriptor
}

func (i *operatorItem) Less(than btree.Item) bool {
	return i.desc.ID < than.(*operatorItem).desc.ID
}

// operatorKey is the unique identity of an operator within a schema.
type operatorKey struct {
	schemaID    descpb.ID
	name        string
	leftTypeID  oid.Oid
	rightTypeID oid.Oid
}

type depEdge struct {
	dependent  catalog.ObjectAddress
	referenced catalog.ObjectAddress
}

type roleMembership struct {
	role        security.SQLUsername
	adminOption bool
}

type role struct {
	superuser bool
	memberOf  []roleMembership
}

// Catalog is the in-memory catalog. It implements catalog.Accessor,
// catalog.RoleManager and catalog.DropperRegistry.
type Catalog struct {
	mu sync.Mutex

	schemasByName map[string]*schemaDescriptor
	schemasByID   map[descpb.ID]*schemaDescriptor
	typesByName   map[string]oid.Oid
	routineByName map[string]oid.Oid

	operators     *btree.BTree
	operatorsByKey map[operatorKey]oid.Oid

	droppers map[catalog.ClassID]catalog.ObjectDropper

	deps      []depEdge
	ownerDeps map[catalog.ObjectAddress]security.SQLUsername
	// ownerDepWrites counts owner-edge updates; tests use it to verify the
	// idempotent no-op path performs none.
	ownerDepWrites int

	roles map[security.SQLUsername]*role

	nextOid oid.Oid
	nextID  descpb.ID
}

var _ catalog.Accessor = (*Catalog)(nil)
var _ catalog.RoleManager = (*Catalog)(nil)
var _ catalog.DropperRegistry = (*Catalog)(nil)

// New returns an empty catalog containing the default schema owned by root
// and the root role.
func New() *Catalog {
	c := &Catalog{
		schemasByName:  make(map[string]*schemaDescriptor),
		schemasByID:    make(map[descpb.ID]*schemaDescriptor),
		typesByName:    make(map[string]oid.Oid),
		routineByName:  make(map[string]oid.Oid),
		operators:      btree.New(8),
		operatorsByKey: make(map[operatorKey]oid.Oid),
		droppers:       make(map[catalog.ClassID]catalog.ObjectDropper),
		ownerDeps:      make(map[catalog.ObjectAddress]security.SQLUsername),
		roles:          make(map[security.SQLUsername]*role),
		nextOid:        firstUserOid,
		nextID:         100,
	}
	c.roles[security.RootUserName()] = &role{superuser: true}
	c.CreateSchema(DefaultSchema, security.RootUserName())
	return c
}

// CreateSchema registers a schema and returns its descriptor.
func (c *Catalog) CreateSchema(name string, owner security.SQLUsername) catalog.SchemaDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc := &schemaDescriptor{
		id:    c.nextID,
		name:  name,
		privs: catpb.NewPrivilegeDescriptor(owner),
	}
	c.nextID++
	c.schemasByName[name] = sc
	c.schemasByID[sc.id] = sc
	return sc
}

// RegisterType registers a scalar type and returns its OID.
func (c *Catalog) RegisterType(name string) oid.Oid {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.allocOidLocked()
	c.typesByName[name] = id
	return id
}

// RegisterRoutine registers a function and returns its OID.
func (c *Catalog) RegisterRoutine(name string) oid.Oid {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.allocOidLocked()
	c.routineByName[name] = id
	return id
}

// CreateRole registers a role.
func (c *Catalog) CreateRole(name security.SQLUsername, superuser bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[name] = &role{superuser: superuser}
}

// AddRoleMember records that member belongs to target.
func (c *Catalog) AddRoleMember(target, member security.SQLUsername, adminOption bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.roles[member]
	if !ok {
		r = &role{}
		c.roles[member] = r
	}
	r.memberOf = append(r.memberOf, roleMembership{role: target, adminOption: adminOption})
}

// AddDependency records a normal dependency edge: dependent requires
// referenced to exist.
func (c *Catalog) AddDependency(dependent, referenced catalog.ObjectAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deps = append(c.deps, depEdge{dependent: dependent, referenced: referenced})
}

// RegisterDropper implements catalog.DropperRegistry.
func (c *Catalog) RegisterDropper(class catalog.ClassID, dropper catalog.ObjectDropper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.droppers[class] = dropper
}

func (c *Catalog) allocOidLocked() oid.Oid {
	id := c.nextOid
	c.nextOid++
	return id
}

// ResolveCreationSchema implements catalog.Accessor.
func (c *Catalog) ResolveCreationSchema(
	_ context.Context, name *tree.OperatorName,
) (catalog.SchemaDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveSchemaLocked(name.Schema, name.ExplicitSchema)
}

func (c *Catalog) resolveSchemaLocked(
	schema tree.Name, explicit bool,
) (catalog.SchemaDescriptor, error) {
	target := DefaultSchema
	if explicit {
		target = schema.Normalize()
	}
	sc, ok := c.schemasByName[target]
	if !ok {
		return nil, pgerror.Newf(pgcode.InvalidSchemaName, "schema %q does not exist", target)
	}
	return sc, nil
}

// GetSchemaByID implements catalog.Accessor.
func (c *Catalog) GetSchemaByID(_ context.Context, id descpb.ID) (catalog.SchemaDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc, ok := c.schemasByID[id]
	if !ok {
		return nil, errors.AssertionFailedf("schema %d not found", id)
	}
	return sc, nil
}

// ResolveType implements catalog.Accessor. Type names live in a single
// namespace in this backend; an explicit qualifier is folded into the key.
func (c *Catalog) ResolveType(_ context.Context, name *tree.TypeName) (oid.Oid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveTypeLocked(name)
}

func (c *Catalog) resolveTypeLocked(name *tree.TypeName) (oid.Oid, error) {
	key := name.Object.Normalize()
	if name.ExplicitSchema {
		key = name.Schema.Normalize() + "." + key
	}
	id, ok := c.typesByName[strings.ToLower(key)]
	if !ok {
		return descpb.InvalidOid, sqlerrors.NewUndefinedTypeError(name)
	}
	return id, nil
}

func (c *Catalog) resolveRoutineLocked(name *tree.RoutineName) (oid.Oid, error) {
	key := name.Object.Normalize()
	if name.ExplicitSchema {
		key = name.Schema.Normalize() + "." + key
	}
	id, ok := c.routineByName[strings.ToLower(key)]
	if !ok {
		return descpb.InvalidOid, sqlerrors.NewUndefinedFunctionError(name)
	}
	return id, nil
}

// LookupOperator implements catalog.Accessor.
func (c *Catalog) LookupOperator(
	_ context.Context, name *tree.OperatorName, leftType, rightType *tree.TypeName,
) (oid.Oid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc, err := c.resolveSchemaLocked(name.Schema, name.ExplicitSchema)
	if err != nil {
		return descpb.InvalidOid, err
	}
	var leftID, rightID oid.Oid
	if leftType != nil {
		if leftID, err = c.resolveTypeLocked(leftType); err != nil {
			return descpb.InvalidOid, err
		}
	}
	if rightType != nil {
		if rightID, err = c.resolveTypeLocked(rightType); err != nil {
			return descpb.InvalidOid, err
		}
	}
	key := operatorKey{
		schemaID:    sc.GetID(),
		name:        name.Object,
		leftTypeID:  leftID,
		rightTypeID: rightID,
	}
	return c.operatorsByKey[key], nil
}

func (c *Catalog) getOperatorLocked(id oid.Oid) *operatorItem {
	if item := c.operators.Get(&operatorItem{desc: opdesc.OperatorDescriptor{ID: id}}); item != nil {
		return item.(*operatorItem)
	}
	return nil
}

// GetOperator implements catalog.Accessor. Returns nil when the row does not
// exist; callers decide whether that is tolerable.
func (c *Catalog) GetOperator(_ context.Context, id oid.Oid) (catalog.OperatorDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.getOperatorLocked(id)
	if item == nil {
		return nil, nil
	}
	desc := item.desc
	return &desc, nil
}

// GetOperatorForUpdate implements catalog.Accessor. The catalog mutex is the
// row lock here; the returned copy is safe to scribble on and becomes
// visible through WriteOperator.
func (c *Catalog) GetOperatorForUpdate(_ context.Context, id oid.Oid) (*opdesc.Mutable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.getOperatorLocked(id)
	if item == nil {
		return nil, nil
	}
	return opdesc.NewMutable(item.desc), nil
}

// WriteOperator implements catalog.Accessor.
func (c *Catalog) WriteOperator(_ context.Context, desc *opdesc.Mutable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.getOperatorLocked(desc.ID)
	if item == nil {
		return errors.AssertionFailedf("operator %d vanished during update", desc.ID)
	}
	item.desc = desc.Immutable()
	return nil
}

// DeleteOperatorRow implements catalog.Accessor.
func (c *Catalog) DeleteOperatorRow(_ context.Context, id oid.Oid) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item := c.getOperatorLocked(id)
	if item == nil {
		return false, nil
	}
	c.operators.Delete(item)
	delete(c.operatorsByKey, operatorKey{
		schemaID:    item.desc.SchemaID,
		name:        item.desc.Name,
		leftTypeID:  item.desc.LeftTypeID,
		rightTypeID: item.desc.RightTypeID,
	})
	return true, nil
}

// OwnerDependency returns the owner edge recorded for an object, if any.
// Exported for tests.
func (c *Catalog) OwnerDependency(addr catalog.ObjectAddress) (security.SQLUsername, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, ok := c.ownerDeps[addr]
	return owner, ok
}

// OwnerDepWrites returns the number of owner-edge updates performed so far.
// Exported for tests.
func (c *Catalog) OwnerDepWrites() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerDepWrites
}

// ChangeOwnerDependency implements catalog.Accessor.
func (c *Catalog) ChangeOwnerDependency(
	_ context.Context, addr catalog.ObjectAddress, newOwner security.SQLUsername,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ownerDeps[addr]; !ok {
		return errors.AssertionFailedf("no owner dependency recorded for %s %d", addr.ClassID, addr.ObjectID)
	}
	c.ownerDeps[addr] = newOwner
	c.ownerDepWrites++
	return nil
}

// RoleExists implements catalog.RoleManager.
func (c *Catalog) RoleExists(_ context.Context, name security.SQLUsername) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.roles[name]
	return ok, nil
}

// IsSuperuser implements catalog.RoleManager. The root user, roles created
// with the superuser flag, and members of admin all qualify.
func (c *Catalog) IsSuperuser(ctx context.Context, name security.SQLUsername) (bool, error) {
	if name.IsRootUser() {
		return true, nil
	}
	c.mu.Lock()
	r, ok := c.roles[name]
	superuser := ok && r.superuser
	c.mu.Unlock()
	if superuser {
		return true, nil
	}
	memberOf, err := c.MemberOfWithAdminOption(ctx, name)
	if err != nil {
		return false, err
	}
	_, isAdmin := memberOf[security.AdminRoleName()]
	return isAdmin, nil
}

// MemberOfWithAdminOption implements catalog.RoleManager. Membership is
// expanded breadth-first over direct and inherited grants.
func (c *Catalog) MemberOfWithAdminOption(
	_ context.Context, member security.SQLUsername,
) (map[security.SQLUsername]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ret := map[security.SQLUsername]bool{}
	visited := map[security.SQLUsername]struct{}{}
	toVisit := []security.SQLUsername{member}

	for len(toVisit) > 0 {
		m := toVisit[0]
		toVisit = toVisit[1:]
		if _, ok := visited[m]; ok {
			continue
		}
		visited[m] = struct{}{}
		r, ok := c.roles[m]
		if !ok {
			continue
		}
		for _, membership := range r.memberOf {
			if admin, ok := ret[membership.role]; !ok || (!admin && membership.adminOption) {
				ret[membership.role] = membership.adminOption
			}
			toVisit = append(toVisit, membership.role)
		}
	}
	return ret, nil
}
