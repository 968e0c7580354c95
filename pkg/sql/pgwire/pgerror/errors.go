// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package pgerror attaches PostgreSQL SQLSTATE codes to errors built with
// github.com/cockroachdb/errors.
package pgerror

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
)

// New creates an error with a pg code.
func New(code pgcode.Code, msg string) error {
	return NewWithDepthf(1, code, "%s", msg)
}

// Newf creates an error with a pg code and a format string.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	return NewWithDepthf(1, code, format, args...)
}

// NewWithDepthf creates an error with a pg code, format string and stack
// trace collected at the specified depth.
func NewWithDepthf(depth int, code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1+depth, format, args...)
	return WithCandidateCode(err, code)
}

// Wrap wraps an error and adds a pg error code. Only the code is added if
// the message is empty.
func Wrap(err error, code pgcode.Code, msg string) error {
	if msg == "" {
		return WithCandidateCode(err, code)
	}
	return WrapWithDepthf(1, err, code, "%s", msg)
}

// Wrapf wraps an error and adds a pg error code. See the doc on
// WrapWithDepthf for details.
func Wrapf(err error, code pgcode.Code, format string, args ...interface{}) error {
	return WrapWithDepthf(1, err, code, format, args...)
}

// WrapWithDepthf wraps an error. It also annotates the provided pg code as
// new candidate code, to be used if the underlying error does not have one
// already.
func WrapWithDepthf(depth int, err error, code pgcode.Code, format string, args ...interface{}) error {
	err = errors.WrapWithDepthf(1+depth, err, format, args...)
	return WithCandidateCode(err, code)
}

// withCandidateCode carries a candidate pg code down an error chain. The
// innermost candidate code wins during flattening, so that the error site
// closest to the cause decides the SQLSTATE.
type withCandidateCode struct {
	cause error
	code  pgcode.Code
}

var _ error = (*withCandidateCode)(nil)
var _ fmt.Formatter = (*withCandidateCode)(nil)

// WithCandidateCode decorates err with a candidate pg code.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCandidateCode{cause: err, code: code}
}

func (w *withCandidateCode) Error() string { return w.cause.Error() }
func (w *withCandidateCode) Cause() error  { return w.cause }
func (w *withCandidateCode) Unwrap() error { return w.cause }

func (w *withCandidateCode) Format(f fmt.State, verb rune) {
	errors.FormatError(w, f, verb)
}

// GetPGCode retrieves the error code for an error. Assertion failures map to
// Internal; otherwise the innermost candidate code in the chain wins, and
// errors without any candidate code report Uncategorized.
func GetPGCode(err error) pgcode.Code {
	if err == nil {
		return pgcode.SuccessfulCompletion
	}
	if errors.HasAssertionFailure(err) {
		return pgcode.Internal
	}
	code := pgcode.Uncategorized
	for c := err; c != nil; c = errors.UnwrapOnce(c) {
		if w, ok := c.(*withCandidateCode); ok {
			code = w.code
		}
	}
	return code
}

// HasCode reports whether the error's flattened pg code equals code.
func HasCode(err error, code pgcode.Code) bool {
	return GetPGCode(err) == code
}
