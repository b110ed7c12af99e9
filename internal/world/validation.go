// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tapestry Contributors

package world

import (
	"unicode"

	"github.com/goccy/go-json"
)

// ValidName reports whether name is a legal entity, alias or attribute
// name: non-empty and alphanumeric only.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// validateName returns a CodeValue error unless name is a legal entity name.
func validateName(name string) error {
	if !ValidName(name) {
		return ValueErrorf("names can only contain alphanumeric characters")
	}
	return nil
}

// serializable reports whether a value survives the snapshot codec.
// Attribute values that cannot be serialized are rejected before any
// state change.
func serializable(value any) bool {
	_, err := json.Marshal(value)
	return err == nil
}
