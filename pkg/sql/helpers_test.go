// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package sql

import (
	"context"
	"sync"
	"testing"

	"github.com/keldadb/kelda/pkg/security"
	"github.com/keldadb/kelda/pkg/sql/catalog/catmem"
	"github.com/keldadb/kelda/pkg/sql/execdispatch"
	"github.com/keldadb/kelda/pkg/sql/privilege"
	"github.com/keldadb/kelda/pkg/sql/sem/tree"
	"github.com/keldadb/kelda/pkg/sql/sessiondata"
	"github.com/lib/pq/oid"
)

// testEnv is the fixture shared by the command handler tests: an in-memory
// catalog preloaded with a few types, routines and roles.
type testEnv struct {
	cat *catmem.Catalog
	cfg *ExecutorConfig

	typInt8 oid.Oid
	typInt4 oid.Oid
	typText oid.Oid
}

func username(s string) security.SQLUsername {
	return security.MakeSQLUsernameFromPreNormalizedString(s)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cat := catmem.New()
	env := &testEnv{
		cat:     cat,
		typInt8: cat.RegisterType("int8"),
		typInt4: cat.RegisterType("int4"),
		typText: cat.RegisterType("text"),
	}
	cat.RegisterRoutine("int8pl")
	cat.RegisterRoutine("int8eq")
	cat.RegisterRoutine("int8um")
	cat.RegisterRoutine("scalarltsel")
	cat.RegisterRoutine("scalarjoinsel")
	cat.CreateRole(username("alice"), false)
	cat.CreateRole(username("bob"), false)
	cat.CreateRole(username("carol"), false)
	env.cfg = MakeExecutorConfig(cat, cat, sessiondata.SingleNode, nil)
	return env
}

// grantCreateOnPublic gives a role CREATE on the default schema. The schema
// is owned by root in the fixture, so non-root users need an explicit grant
// to create operators.
func (env *testEnv) grantCreateOnPublic(t *testing.T, user security.SQLUsername) {
	t.Helper()
	sc, err := env.cat.ResolveCreationSchema(context.Background(), &tree.OperatorName{Object: "+"})
	if err != nil {
		t.Fatal(err)
	}
	sc.GetPrivileges().Grant(user, privilege.CREATE)
}

func (env *testEnv) planner(user string) *planner {
	return NewPlanner(env.cfg, username(user))
}

// boolPtr is a shorthand for boolean option payloads.
func boolPtr(b bool) *bool { return &b }

// typeOpt, routineOpt and boolOpt build definition list elements.
func typeOpt(key string, typ *tree.TypeName) tree.OperatorOption {
	return tree.OperatorOption{Key: tree.Name(key), Type: typ}
}

func routineOpt(key, name string) tree.OperatorOption {
	r := tree.MakeRoutineName(tree.Name(name))
	return tree.OperatorOption{Key: tree.Name(key), Routine: &r}
}

func boolOpt(key string, v *bool) tree.OperatorOption {
	return tree.OperatorOption{Key: tree.Name(key), BoolVal: v}
}

func bareOpt(key string) tree.OperatorOption {
	return tree.OperatorOption{Key: tree.Name(key)}
}

// binaryPlusStmt returns a plain binary int8 + int8 CREATE OPERATOR
// statement.
func binaryPlusStmt() *tree.CreateOperator {
	return &tree.CreateOperator{
		Name: tree.MakeOperatorName("+"),
		Options: tree.OperatorOptions{
			typeOpt("leftarg", tree.MakeTypeName("int8")),
			typeOpt("rightarg", tree.MakeTypeName("int8")),
			routineOpt("procedure", "int8pl"),
		},
	}
}

// recordingConn is an execdispatch.Conn that records replayed statements.
type recordingConn struct {
	id string

	mu    sync.Mutex
	stmts []string
}

var _ execdispatch.Conn = (*recordingConn)(nil)

func (c *recordingConn) NodeID() string { return c.id }

func (c *recordingConn) ReplayStatement(_ context.Context, sql string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stmts = append(c.stmts, sql)
	return nil
}

func (c *recordingConn) replayed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.stmts...)
}
