package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort lexicographically by
// creation time, which keeps account, enrollment and session keys
// naturally ordered in the store.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
