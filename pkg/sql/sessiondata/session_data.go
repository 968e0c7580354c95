// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package sessiondata carries the ambient per-session state threaded through
// command execution: the session user and the node's role in the cluster.
package sessiondata

import "github.com/keldadb/kelda/pkg/security"

// ClusterRole identifies a node's role in a distributed deployment.
type ClusterRole int

const (
	// SingleNode is a standalone deployment; no statement dispatch occurs.
	SingleNode ClusterRole = iota
	// Coordinator receives original statements and forwards validated
	// statements to workers for consistent replay.
	Coordinator
	// Worker replays statements forwarded by a coordinator.
	Worker
)

func (r ClusterRole) String() string {
	switch r {
	case Coordinator:
		return "coordinator"
	case Worker:
		return "worker"
	default:
		return "single-node"
	}
}

// SessionData contains session parameters bound at connection time.
type SessionData struct {
	// UserProto is the session user, the identity all ACL checks run as.
	UserProto security.SQLUsername
}

// User retrieves the session user.
func (s *SessionData) User() security.SQLUsername { return s.UserProto }
