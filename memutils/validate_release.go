//go:build reclaim_release

package memutils

import "golang.org/x/exp/constraints"

const DebugChecks = false

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops when the reclaim_release build tag is present
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops when the reclaim_release build tag is present.
func DebugCheckPow2[T constraints.Integer](value T, name string) {
}
