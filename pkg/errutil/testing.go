// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error whose resolved code is code.
func AssertErrorCode(t testing.TB, err error, code string) {
	t.Helper()
	require.Error(t, err)
	_, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	assert.Equal(t, code, Code(err))
}

// AssertErrorContext asserts that err carries key=value in its oops context.
func AssertErrorContext(t testing.TB, err error, key string, value any) {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	require.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// RequireLoggedCode finds the first JSON log record with message msg and
// asserts it was logged with code. The decoded record is returned for
// further checks.
func RequireLoggedCode(t testing.TB, logs []byte, msg, code string) map[string]any {
	t.Helper()
	for line := range bytes.Lines(logs) {
		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		if record["msg"] != msg {
			continue
		}
		require.Equal(t, code, record["code"], "log record %q", msg)
		return record
	}
	require.Failf(t, "log record not found", "no %q record in:\n%s", msg, logs)
	return nil
}
