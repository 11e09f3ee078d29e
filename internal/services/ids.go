package services

import (
	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// newID returns a short record id, falling back to a UUID if the generator fails
func newID() string {
	id, err := shortid.Generate()
	if err != nil {
		return uuid.NewString()
	}
	return id
}
