package tectonic

import (
	"fmt"

	"github.com/google/uuid"
)

// BlobID uniquely identifies a stored blob. IDs are generated by the
// store at write time and are opaque to callers until returned.
type BlobID struct {
	uuid.UUID
}

// NewBlobID returns a fresh random BlobID.
func NewBlobID() BlobID {
	return BlobID{uuid.New()}
}

// ParseBlobID parses the canonical text encoding of a BlobID. Malformed
// input is rejected before any store is touched.
func ParseBlobID(s string) (BlobID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return BlobID{}, fmt.Errorf("%w: %q", ErrInvalidBlobID, s)
	}
	return BlobID{u}, nil
}

// TenantID names a tenant. Tenant identifiers are caller-chosen,
// case-sensitive, and must be non-empty.
type TenantID string

func (t TenantID) String() string {
	return string(t)
}

// IDGenerator produces new blob identifiers. The default implementation
// generates random UUIDs; tests can supply a deterministic one.
type IDGenerator interface {
	NewBlobID() BlobID
}

type randomIDs struct{}

func (randomIDs) NewBlobID() BlobID {
	return NewBlobID()
}
