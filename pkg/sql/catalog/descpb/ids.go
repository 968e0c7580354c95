// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package descpb holds the identifier types shared across the catalog.
package descpb

import "github.com/lib/pq/oid"

// ID is a unique identifier for a schema-level catalog descriptor.
type ID uint32

// InvalidID is the zero ID, never assigned to a descriptor.
const InvalidID ID = 0

// InvalidOid is the zero object identifier. An unset operand type slot on an
// operator descriptor holds InvalidOid.
const InvalidOid oid.Oid = 0
