// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

// Datum is a single result value. The DDL subset handled by this layer
// never produces rows; the type exists so plan nodes keep the engine-wide
// execution interface.
type Datum interface {
	NodeFormatter
}

// Datums is a slice of result values.
type Datums []Datum
