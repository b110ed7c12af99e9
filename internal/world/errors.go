// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"github.com/samber/oops"
)

// Error codes for domain failures. The literal message of any of these is
// delivered verbatim to the invoking player; the code lets callers and
// tests distinguish the failure class without parsing text.
const (
	// CodeValue is used when a referenced entity, fqn or username does not
	// exist, a name fails validation, input syntax is malformed, or an
	// ambiguous match needs disambiguation.
	CodeValue = "VALUE"
	// CodeType is used when an operation is attempted on an entity of the
	// wrong kind.
	CodeType = "TYPE"
	// CodePermission is used when the requester lacks ownership or
	// superuser standing, or a room's allow/exclude policy denies entry.
	CodePermission = "PERMISSION"
	// CodeOwnership is used where strict ownership is required and the
	// superuser override does not apply to the phrasing of the failure.
	CodeOwnership = "OWNERSHIP"
	// CodeArity is used for a wrong number of arguments to a builtin verb.
	CodeArity = "ARITY"
)

// ValueErrorf creates a CodeValue error with a player-facing message.
func ValueErrorf(format string, args ...any) error {
	return oops.Code(CodeValue).Errorf(format, args...)
}

// TypeErrorf creates a CodeType error with a player-facing message.
func TypeErrorf(format string, args ...any) error {
	return oops.Code(CodeType).Errorf(format, args...)
}

// PermissionErrorf creates a CodePermission error with a player-facing message.
func PermissionErrorf(format string, args ...any) error {
	return oops.Code(CodePermission).Errorf(format, args...)
}

// OwnershipErrorf creates a CodeOwnership error with a player-facing message.
func OwnershipErrorf(format string, args ...any) error {
	return oops.Code(CodeOwnership).Errorf(format, args...)
}

// ArityErrorf creates a CodeArity error with a player-facing message.
func ArityErrorf(format string, args ...any) error {
	return oops.Code(CodeArity).Errorf(format, args...)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
