package core

import "github.com/google/uuid"

// NewID returns a new unique identifier for requests, results and tickets.
func NewID() string { return uuid.NewString() }
