// Package id holds the identifier type shared by all entities.
// Rows are keyed by a database sequence, so ids grow monotonically with insertion.
package id

import (
	"strconv"
)

// ID is the primary key type of every entity.
type ID = int64

// Parse converts a decimal string to ID. Only positive values are valid.
func Parse(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// Format renders an ID the way it appears in query strings.
func Format(v ID) string {
	return strconv.FormatInt(v, 10)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == 0
}
