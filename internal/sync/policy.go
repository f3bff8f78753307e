// Copyright (c) 2026 NestHub
// SPDX-License-Identifier: GPL-3.0-or-later

package sync

// OpKind names a mutating operation on the synchronized state.
type OpKind int

// Mutating operations.
const (
	OpCreateProperty OpKind = iota
	OpUpdateProperty
	OpDeleteProperty
	OpSetPropertyStatus
	OpRegisterUser
	OpUpdateUser
	OpSetUserStatus
	OpAddRequest
	OpDeleteRequest
)

// String returns the operation name used in logs.
func (op OpKind) String() string {
	switch op {
	case OpCreateProperty:
		return "create_property"
	case OpUpdateProperty:
		return "update_property"
	case OpDeleteProperty:
		return "delete_property"
	case OpSetPropertyStatus:
		return "set_property_status"
	case OpRegisterUser:
		return "register_user"
	case OpUpdateUser:
		return "update_user"
	case OpSetUserStatus:
		return "set_user_status"
	case OpAddRequest:
		return "add_request"
	case OpDeleteRequest:
		return "delete_request"
	default:
		return "unknown"
	}
}

// FailurePolicy is what an operation does with local state when its remote
// write fails.
type FailurePolicy int

const (
	// PolicyRollback restores the pre-operation local state and reports failure.
	PolicyRollback FailurePolicy = iota
	// PolicyKeepLocal keeps the optimistic local change but still reports
	// the remote failure to the caller.
	PolicyKeepLocal
	// PolicyRetrySanitized retries once with a reduced payload, then fails
	// without applying the local change.
	PolicyRetrySanitized
	// PolicyLogOnly keeps the local change and only logs the remote failure.
	PolicyLogOnly
)

// String returns the policy name used in logs.
func (p FailurePolicy) String() string {
	switch p {
	case PolicyRollback:
		return "rollback"
	case PolicyKeepLocal:
		return "keep_local"
	case PolicyRetrySanitized:
		return "retry_sanitized"
	default:
		return "log_only"
	}
}

// PolicyFor returns the failure policy of an operation. Every mutating
// operation has exactly one named policy; handlers never improvise their own
// recovery behavior.
func PolicyFor(op OpKind) FailurePolicy {
	switch op {
	case OpCreateProperty:
		return PolicyRetrySanitized
	case OpDeleteProperty, OpDeleteRequest:
		return PolicyRollback
	case OpUpdateProperty:
		return PolicyKeepLocal
	default:
		// Status flips, registration, profile edits and inquiry submission
		// never fail the caller.
		return PolicyLogOnly
	}
}
