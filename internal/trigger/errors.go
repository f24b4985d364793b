// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package trigger

import "github.com/samber/oops"

// Error codes logged or returned by triggers.
const (
	CodeRegistryMissing     = "REGISTRY_MISSING"
	CodeTriggerIndexInvalid = "TRIGGER_INDEX_INVALID"
	CodeTriggerDuplicate    = "TRIGGER_DUPLICATE"
	CodeTriggerNil          = "TRIGGER_NIL"
	CodeMatcherInvalid      = "MATCHER_INVALID"
	CodePolicyFailed        = "POLICY_FAILED"
)

// ErrRegistryMissing creates an error for a stimulus that arrived before a
// task registry was wired.
func ErrRegistryMissing(taskID string) error {
	return oops.In("trigger").
		Code(CodeRegistryMissing).
		With("task_id", taskID).
		New("task registry not available, stimulus dropped")
}

// ErrTriggerIndexInvalid creates an error for an out-of-range trigger index.
func ErrTriggerIndexInvalid(index, size int) error {
	return oops.In("trigger").
		Code(CodeTriggerIndexInvalid).
		With("index", index).
		With("size", size).
		Errorf("trigger index %d out of range [0,%d)", index, size)
}

// ErrTriggerDuplicate creates an error for a second trigger with the same task ID.
func ErrTriggerDuplicate(taskID string) error {
	return oops.In("trigger").
		Code(CodeTriggerDuplicate).
		With("task_id", taskID).
		Errorf("trigger already registered for task: %s", taskID)
}

// ErrTriggerNil creates an error for adding a nil trigger to a set.
func ErrTriggerNil() error {
	return oops.In("trigger").Code(CodeTriggerNil).New("trigger is nil")
}

// ErrMatcherInvalid wraps a glob compile failure.
func ErrMatcherInvalid(pattern string, cause error) error {
	return oops.In("trigger").
		Code(CodeMatcherInvalid).
		With("pattern", pattern).
		Wrap(cause)
}

// ErrPolicyFailed wraps a stimulus policy failure.
func ErrPolicyFailed(taskID, policy string, cause error) error {
	return oops.In("trigger").
		Code(CodePolicyFailed).
		With("task_id", taskID).
		With("policy", policy).
		Wrap(cause)
}
