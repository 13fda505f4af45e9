package util

import (
	"math/rand/v2"
	"strconv"
)

// maxID is 36^9, so generated ids are at most nine base-36 digits.
const maxID = 101559956668416

// GenerateID returns a short pseudo-random base-36 token. It is not
// cryptographically secure; use uuid for anything persisted.
func GenerateID() string {
	return strconv.FormatUint(rand.Uint64N(maxID), 36) //nolint:gosec // not security sensitive
}
