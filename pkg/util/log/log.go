// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package log provides context-tagged structured logging for the SQL layer.
// Tags attached to the context via logtags are rendered as a bracketed
// prefix, and format arguments go through redact so that values from user
// data stay marked.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// Severity of a log entry.
type Severity int

const (
	// SeverityInfo is used for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is used for non-fatal anomalies.
	SeverityWarning
	// SeverityError is used for errors.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "I"
	case SeverityWarning:
		return "W"
	case SeverityError:
		return "E"
	}
	return "?"
}

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects log output. Used in tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Infof logs an informational message.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityInfo, format, args...)
}

// Warningf logs a warning.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityWarning, format, args...)
}

// Errorf logs an error.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logfDepth(ctx, SeverityError, format, args...)
}

func logfDepth(ctx context.Context, sev Severity, format string, args ...interface{}) {
	msg := redact.Sprintf(format, args...)
	var prefix string
	if tags := logtags.FromContext(ctx); tags != nil {
		prefix = "[" + tags.String() + "] "
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, "%s %s%s\n", sev, prefix, msg.StripMarkers())
}
