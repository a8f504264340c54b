// internal/app/system/joincode/joincode.go

// Package joincode generates and validates the 6-digit family join
// codes. A code is both the family's primary key and the token people
// share out of band, so the space is deliberately small and human-
// friendly: uniform over [100000, 999999].
package joincode

import (
	"math/rand/v2"
	"strconv"
)

const (
	// Length is the fixed number of digits in a join code.
	Length = 6

	min = 100000
	max = 999999
)

// New draws a uniformly random 6-digit code. Uniqueness is not
// guaranteed here; the families collection's _id constraint is the
// arbiter, and the registry retries on collision.
func New() string {
	return strconv.Itoa(min + rand.IntN(max-min+1))
}

// Valid reports whether s is a well-formed join code: exactly six
// ASCII digits with a non-zero leading digit.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
