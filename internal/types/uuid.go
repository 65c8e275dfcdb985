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
// with a prefix ex inv_01HZX3R8WQK6D0Z2F7M5T9YB4C
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_INVOICE    = "inv"
	UUID_PREFIX_RECEIPT    = "rcpt"
	UUID_PREFIX_CLIENT     = "client"
	UUID_PREFIX_SUB_ENTITY = "subent"
	UUID_PREFIX_REQUEST    = "req"
)
