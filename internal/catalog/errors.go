// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package catalog

import (
	"fmt"

	"github.com/samber/oops"
)

// Error codes returned while loading a level.
const (
	CodeEmpty       = "LEVEL_EMPTY"
	CodeYAML        = "LEVEL_YAML"
	CodeVersion     = "LEVEL_VERSION"
	CodeInvalid     = "LEVEL_INVALID"
	CodeSchema      = "LEVEL_SCHEMA"
	CodeBuildFailed = "LEVEL_BUILD_FAILED"
)

// ErrBadDuration creates an error for an unparsable step offset.
func ErrBadDuration(value string, line int, err error) error {
	return oops.In("catalog").
		Code(CodeYAML).
		With("value", value).
		With("line", line).
		Wrapf(err, "line %d: invalid duration %q", line, value)
}

// invalid creates a LEVEL_INVALID error at a document path such as
// "triggers[2].target".
func invalid(path, format string, args ...any) error {
	return oops.In("catalog").
		Code(CodeInvalid).
		With("path", path).
		Errorf("%s: %s", path, fmt.Sprintf(format, args...))
}
