// Package service provides business logic for the application.
package service

import (
	"github.com/oklog/ulid/v2"
)

// newID returns a lexicographically sortable unique identifier.
func newID() string {
	return ulid.Make().String()
}
