package tectonic

import (
	"errors"
	"fmt"
)

// ErrInvalidBlobID is returned when blob identifier text does not parse
// as a canonical UUID.
var ErrInvalidBlobID = errors.New("invalid blob id")

// BlobNotFoundError indicates that no blob exists for the requested
// identifier, either in the content store or in the metadata index.
type BlobNotFoundError struct {
	ID BlobID
}

func (e *BlobNotFoundError) Error() string {
	return fmt.Sprintf("blob not found: %s", e.ID)
}

// InvalidTenantError indicates an operation against an unregistered
// tenant, or a blob that belongs to a different tenant.
type InvalidTenantError struct {
	Tenant TenantID
	Reason string
}

func (e *InvalidTenantError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid tenant %q: %s", e.Tenant, e.Reason)
	}
	return fmt.Sprintf("invalid tenant %q", e.Tenant)
}

// ChecksumMismatchError is returned when stored content no longer
// matches the digest recorded at write time. It is never silently
// tolerated; both digests are carried for the caller.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// IsBlobNotFound reports whether err is a BlobNotFoundError.
func IsBlobNotFound(err error) bool {
	var target *BlobNotFoundError
	return errors.As(err, &target)
}

// IsInvalidTenant reports whether err is an InvalidTenantError.
func IsInvalidTenant(err error) bool {
	var target *InvalidTenantError
	return errors.As(err, &target)
}

// IsChecksumMismatch reports whether err is a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}
