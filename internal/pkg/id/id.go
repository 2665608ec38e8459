// Package id generates identifiers for alerts, checkpoints and the other
// platform entities.
package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. Time-ordered ids keep alert and
// checkpoint listings sorted by creation without a separate sort key, and
// they are safe as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
