package memutils

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// CheckPow2 returns an error wrapping PowerOfTwoError if number is zero or not a power of two
func CheckPow2[T constraints.Integer](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return errors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp[T constraints.Integer, A constraints.Integer](value T, alignment A) T {
	mask := T(alignment) - 1
	return (value + mask) &^ mask
}

// AlignDown rounds value down to a multiple of alignment, which must be a power of two
func AlignDown[T constraints.Integer, A constraints.Integer](value T, alignment A) T {
	return value &^ (T(alignment) - 1)
}

// IsAligned reports whether value is a multiple of alignment, which must be a power of two
func IsAligned[T constraints.Integer, A constraints.Integer](value T, alignment A) bool {
	return value&(T(alignment)-1) == 0
}
