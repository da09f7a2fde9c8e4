package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bin is one shared trip document held by the remote store.
// The ID is the opaque share id handed to collaborators. Record is replaced
// wholesale on every update; there is no version column, so the last write
// wins.
type Bin struct {
	ID        uuid.UUID
	Record    Document
	CreatedAt time.Time
	UpdatedAt time.Time
}
