// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"bytes"
	"fmt"
	"strings"
)

// NodeFormatter is implemented by nodes that can be pretty-printed.
type NodeFormatter interface {
	// Format performs pretty-printing towards a buffer.
	Format(ctx *FmtCtx)
}

// FmtCtx is suitable for passing to Format() methods. It also exposes the
// underlying bytes.Buffer interface for convenience.
type FmtCtx struct {
	bytes.Buffer
}

// NewFmtCtx creates a FmtCtx.
func NewFmtCtx() *FmtCtx {
	return &FmtCtx{}
}

// FormatNode recurses into a node for pretty-printing.
func (ctx *FmtCtx) FormatNode(n NodeFormatter) {
	n.Format(ctx)
}

// Printf calls fmt.Fprintf on the linked bytes.Buffer.
func (ctx *FmtCtx) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&ctx.Buffer, format, args...)
}

// CloseAndGetString combines Close() and String().
func (ctx *FmtCtx) CloseAndGetString() string {
	return ctx.String()
}

// AsString pretty prints a node to a string.
func AsString(n NodeFormatter) string {
	ctx := NewFmtCtx()
	ctx.FormatNode(n)
	return ctx.CloseAndGetString()
}

// isBareIdentifier reports whether s can appear in SQL text without
// quoting.
func isBareIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

// encodeSQLIdent writes s to ctx, quoting if necessary.
func (ctx *FmtCtx) encodeSQLIdent(s string) {
	if isBareIdentifier(s) {
		ctx.WriteString(s)
		return
	}
	ctx.WriteByte('"')
	ctx.WriteString(strings.ReplaceAll(s, `"`, `""`))
	ctx.WriteByte('"')
}
