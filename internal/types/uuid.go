package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex animal_01HGW2N7EHJVJ4CJ999RRS2E97
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_ANIMAL         = "animal"
	UUID_PREFIX_TRANSITION_RUN = "run"
	UUID_PREFIX_BACKUP         = "backup"
	UUID_PREFIX_REMINDER       = "remind"
)
