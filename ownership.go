package board

import "github.com/google/uuid"

// Ownable is a resource with a single owning user
type Ownable interface {
	OwnerID() uuid.UUID
}

// Authorize allows a mutation only when the resource exists and requesterID
// owns it. A missing resource yields a not found error naming kind and id,
// a foreign one yields a forbidden error.
func Authorize[T Ownable](resource T, found bool, requesterID uuid.UUID, kind, id string) error {
	if !found {
		return NotFound(kind, id)
	}
	if requesterID == uuid.Nil || resource.OwnerID() != requesterID {
		return Forbidden(kind, id)
	}
	return nil
}
