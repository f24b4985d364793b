// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package quest

import "github.com/samber/oops"

// Error codes for misuse the registry logs and ignores.
const (
	CodeTaskDuplicate     = "TASK_DUPLICATE"
	CodeTaskUnknown       = "TASK_UNKNOWN"
	CodeTaskInvalidTarget = "TASK_INVALID_TARGET"
	CodePresenterFailed   = "PRESENTER_FAILED"
)

// ErrTaskDuplicate creates an error for adding a task ID that is already active.
func ErrTaskDuplicate(taskID string) error {
	return oops.In("quest").
		Code(CodeTaskDuplicate).
		With("task_id", taskID).
		Errorf("task ID already exists: %s", taskID)
}

// ErrTaskUnknown creates an error for updating a task that is not active.
func ErrTaskUnknown(taskID string) error {
	return oops.In("quest").
		Code(CodeTaskUnknown).
		With("task_id", taskID).
		Errorf("task ID not found: %s", taskID)
}

// ErrTaskInvalidTarget creates an error for a task whose target is below one.
func ErrTaskInvalidTarget(taskID string, target int) error {
	return oops.In("quest").
		Code(CodeTaskInvalidTarget).
		With("task_id", taskID).
		With("target", target).
		Errorf("task target must be positive, got %d", target)
}

// ErrPresenterFailed wraps a presenter error.
func ErrPresenterFailed(taskID string, cause error) error {
	return oops.In("quest").
		Code(CodePresenterFailed).
		With("task_id", taskID).
		Wrap(cause)
}
