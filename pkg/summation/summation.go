// Package summation computes 1 + 2 + ... + n three different ways.
// All variants treat n <= 0 as the empty sum and return 0.
package summation

import (
	"errors"
	"fmt"
)

// MaxN is the largest n whose sum fits in an int64.
const MaxN = 4_294_967_295

// MaxRecursiveN bounds the recursion depth of Recursive.
const MaxRecursiveN = 10_000

var (
	// ErrOverflow is returned when the sum of 1..n does not fit in an int64.
	ErrOverflow = errors.New("summation: result overflows int64")
	// ErrRecursionLimit is returned by Recursive when n exceeds MaxRecursiveN.
	ErrRecursionLimit = errors.New("summation: recursion limit exceeded")
)

// CheckRange reports ErrOverflow when n is above MaxN.
func CheckRange(n int64) error {
	if n > MaxN {
		return fmt.Errorf("%w: n=%d, max=%d", ErrOverflow, n, MaxN)
	}
	return nil
}

// Formula uses Gauss' closed form. O(1) time and space.
func Formula(n int64) (int64, error) {
	if err := CheckRange(n); err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, nil
	}
	// Halve the even factor first so the intermediate product fits whenever the result does.
	if n%2 == 0 {
		return (n / 2) * (n + 1), nil
	}
	return n * ((n + 1) / 2), nil
}

// Iterative adds every term in a loop. O(n) time, O(1) space.
func Iterative(n int64) (int64, error) {
	if err := CheckRange(n); err != nil {
		return 0, err
	}
	var sum int64
	for i := int64(1); i <= n; i++ {
		sum += i
	}
	return sum, nil
}

// Recursive adds n to the sum of the first n-1 terms. O(n) time and stack.
func Recursive(n int64) (int64, error) {
	if err := CheckRange(n); err != nil {
		return 0, err
	}
	if n > MaxRecursiveN {
		return 0, fmt.Errorf("%w: n=%d, max=%d", ErrRecursionLimit, n, MaxRecursiveN)
	}
	return recursive(n), nil
}

func recursive(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return n + recursive(n-1)
}
