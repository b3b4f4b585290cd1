package record

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifier is an opaque, globally unique identifier scoped to one entity
// type's namespace. Identifiers are minted deterministically from the run
// seed, so re-runs with identical configuration reproduce identical values.
type Identifier string

// namespace anchors all minted identifiers; it never changes between runs.
var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fixgen.identifier"))

// MintIdentifier derives the identifier for the ordinal-th record of an
// entity type under the given seed, as a name-based (SHA-1) UUID.
func MintIdentifier(seed, entityType string, ordinal int) Identifier {
	name := fmt.Sprintf("%s|%s|%d", seed, entityType, ordinal)
	return Identifier(uuid.NewSHA1(namespace, []byte(name)).String())
}

// String returns the identifier as a plain string.
func (id Identifier) String() string {
	return string(id)
}
