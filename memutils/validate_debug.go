//go:build !reclaim_release

package memutils

import "golang.org/x/exp/constraints"

// DebugChecks is true unless the module is built with the reclaim_release build tag. Expensive
// consistency checks throughout the module are gated on it.
const DebugChecks = true

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops when the reclaim_release build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops when the reclaim_release build tag is present.
func DebugCheckPow2[T constraints.Integer](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
