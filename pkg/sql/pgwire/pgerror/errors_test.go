// Copyright 2025 The Kelda Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package pgerror

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/keldadb/kelda/pkg/sql/pgwire/pgcode"
	"github.com/stretchr/testify/require"
)

func TestGetPGCode(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want pgcode.Code
	}{
		{"nil", nil, pgcode.SuccessfulCompletion},
		{"plain", errors.New("boom"), pgcode.Uncategorized},
		{"new", New(pgcode.UndefinedObject, "boom"), pgcode.UndefinedObject},
		{
			// The code closest to the cause wins.
			"wrapped",
			Wrapf(New(pgcode.UndefinedObject, "boom"),
				pgcode.InsufficientPrivilege, "outer"),
			pgcode.UndefinedObject,
		},
		{
			// The outer wrap supplies a code the cause lacks.
			"wrapped plain",
			Wrapf(errors.New("boom"), pgcode.InsufficientPrivilege, "outer"),
			pgcode.InsufficientPrivilege,
		},
		{
			// Assertion failures override any candidate code.
			"assertion",
			Wrap(errors.AssertionFailedf("boom"), pgcode.UndefinedObject, ""),
			pgcode.Internal,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, GetPGCode(tc.err))
		})
	}
}

func TestWrapKeepsMessage(t *testing.T) {
	err := Wrapf(New(pgcode.UndefinedObject, "inner"), pgcode.Internal, "outer %d", 42)
	require.EqualError(t, err, "outer 42: inner")
	require.True(t, HasCode(err, pgcode.UndefinedObject))
}
