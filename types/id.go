package types

import "github.com/gofrs/uuid/v5"

// NewID generates a random v4 UUID string, used for node, connection, and
// capability grant identifiers wherever the caller doesn't supply its own.
func NewID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// uuid.NewV4 only fails if the system's random source is broken,
		// which leaves nothing sensible to recover into.
		panic("types: failed to generate uuid: " + err.Error())
	}
	return id.String()
}
