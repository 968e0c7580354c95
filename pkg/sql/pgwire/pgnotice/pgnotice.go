// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package pgnotice implements notices and warnings delivered to the client
// out of band from query results.
package pgnotice

import (
	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgerror"
)

// DisplaySeverity indicates the severity of a notice.
type DisplaySeverity int

const (
	// DisplaySeverityNotice is the default severity.
	DisplaySeverityNotice DisplaySeverity = iota
	// DisplaySeverityWarning is for notices the client should surface
	// prominently.
	DisplaySeverityWarning
)

func (s DisplaySeverity) String() string {
	if s == DisplaySeverityWarning {
		return "WARNING"
	}
	return "NOTICE"
}

// Notice is a wrapper around errors that are intended to be notices.
type Notice error

// Newf generates a Notice with a format string.
func Newf(format string, args ...interface{}) Notice {
	err := errors.NewWithDepthf(1, format, args...)
	err = pgerror.WithCandidateCode(err, pgcode.SuccessfulCompletion)
	err = WithSeverity(err, DisplaySeverityNotice)
	return Notice(err)
}

// NewWithSeverityf generates a Notice with a format string and severity.
func NewWithSeverityf(severity DisplaySeverity, format string, args ...interface{}) Notice {
	err := errors.NewWithDepthf(1, format, args...)
	err = pgerror.WithCandidateCode(err, pgcode.Warning)
	err = WithSeverity(err, severity)
	return Notice(err)
}

type withSeverity struct {
	cause    error
	severity DisplaySeverity
}

func (w *withSeverity) Error() string { return w.cause.Error() }
func (w *withSeverity) Cause() error  { return w.cause }
func (w *withSeverity) Unwrap() error { return w.cause }

// WithSeverity decorates the error with a notice severity.
func WithSeverity(err error, severity DisplaySeverity) error {
	if err == nil {
		return nil
	}
	return &withSeverity{cause: err, severity: severity}
}

// GetDisplaySeverity returns the severity of a notice.
func GetDisplaySeverity(n Notice) DisplaySeverity {
	for c := error(n); c != nil; c = errors.UnwrapOnce(c) {
		if w, ok := c.(*withSeverity); ok {
			return w.severity
		}
	}
	return DisplaySeverityNotice
}
