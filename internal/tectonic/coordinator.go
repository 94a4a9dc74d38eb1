package tectonic

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
)

// Config holds configuration for a Coordinator.
type Config struct {
	// RootDir is the directory under which all store state lives:
	// chunks/, metadata/ and tenants/.
	RootDir string

	// IDs generates blob identifiers for new writes. Defaults to random
	// UUIDs when nil.
	IDs IDGenerator
}

// Coordinator composes the chunk store, the metadata index and the
// tenant registry into tenant-scoped operations. It enforces ownership
// and sequences writes and deletes across the stores; it owns the
// lifecycle of both persistent indexes.
//
// Operations are synchronous and run to completion or first error. The
// coordinator adds no locking of its own: concurrent writes to the same
// tenant's blob list race, and callers needing strict consistency under
// concurrent writers must serialize per tenant externally.
type Coordinator struct {
	chunks   *ChunkStore
	metadata *MetadataStore
	tenants  *TenantRegistry
	ids      IDGenerator
}

// Open initializes all three stores under cfg.RootDir.
func Open(cfg Config) (*Coordinator, error) {
	if cfg.RootDir == "" {
		return nil, fmt.Errorf("RootDir must not be empty")
	}
	ids := cfg.IDs
	if ids == nil {
		ids = randomIDs{}
	}

	chunks, err := NewChunkStore(cfg.RootDir)
	if err != nil {
		return nil, err
	}
	metadata, err := OpenMetadataStore(filepath.Join(cfg.RootDir, "metadata"))
	if err != nil {
		return nil, err
	}
	tenants, err := OpenTenantRegistry(filepath.Join(cfg.RootDir, "tenants"))
	if err != nil {
		metadata.Close()
		return nil, err
	}

	return &Coordinator{
		chunks:   chunks,
		metadata: metadata,
		tenants:  tenants,
		ids:      ids,
	}, nil
}

// Close flushes and closes both persistent indexes.
func (c *Coordinator) Close() error {
	return errors.Join(c.metadata.Close(), c.tenants.Close())
}

// RegisterTenant registers a tenant; registering an existing tenant is
// a no-op success.
func (c *Coordinator) RegisterTenant(tenant TenantID) error {
	return c.tenants.Register(tenant)
}

// ListTenants enumerates all registered tenants.
func (c *Coordinator) ListTenants() ([]TenantID, error) {
	return c.tenants.List()
}

// PutBlob stores the payload from r for tenant and returns the
// generated blob identifier. The content write completes before the
// metadata record is built and indexed.
func (c *Coordinator) PutBlob(tenant TenantID, r io.Reader) (BlobID, error) {
	if err := c.tenants.Validate(tenant); err != nil {
		return BlobID{}, err
	}

	id := c.ids.NewBlobID()
	info, err := c.chunks.Put(id, r)
	if err != nil {
		return BlobID{}, err
	}

	md := &BlobMetadata{
		BlobID:    id,
		TenantID:  tenant,
		Size:      info.Size,
		Checksum:  info.Checksum,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.metadata.Put(md); err != nil {
		return BlobID{}, err
	}

	return id, nil
}

// GetBlob returns an open reader over the blob's content plus its
// metadata record. Content is re-verified against the stored digest on
// every read. The blob must belong to the requesting tenant; a matching
// identifier owned by another tenant fails with InvalidTenantError.
func (c *Coordinator) GetBlob(tenant TenantID, id BlobID) (io.ReadCloser, *BlobMetadata, error) {
	if err := c.tenants.Validate(tenant); err != nil {
		return nil, nil, err
	}

	md, err := c.metadata.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if md.TenantID != tenant {
		return nil, nil, &InvalidTenantError{Tenant: tenant, Reason: "blob does not belong to this tenant"}
	}

	r, _, err := c.chunks.Get(id)
	if err != nil {
		return nil, nil, err
	}
	return r, md, nil
}

// ListBlobs returns the metadata records for all of the tenant's blobs,
// in list order. Identifiers whose record lookup fails are skipped
// rather than failing the whole listing; the number of skipped entries
// is returned so one corrupted entry stays observable without aborting.
func (c *Coordinator) ListBlobs(tenant TenantID) ([]*BlobMetadata, int, error) {
	if err := c.tenants.Validate(tenant); err != nil {
		return nil, 0, err
	}

	ids, err := c.metadata.ListForTenant(tenant)
	if err != nil {
		return nil, 0, err
	}

	records := make([]*BlobMetadata, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		md, err := c.metadata.Get(id)
		if err != nil {
			skipped++
			slog.Warn("Skipping unreadable blob record", "tenant", tenant, "blob", id, "error", err)
			continue
		}
		records = append(records, md)
	}
	if skipped > 0 {
		slog.Warn("Blob listing skipped entries", "tenant", tenant, "skipped", skipped)
	}

	return records, skipped, nil
}

// DeleteBlob removes the blob's content and metadata. Ownership is
// checked against the stored record before anything is deleted.
func (c *Coordinator) DeleteBlob(tenant TenantID, id BlobID) error {
	if err := c.tenants.Validate(tenant); err != nil {
		return err
	}

	md, err := c.metadata.Get(id)
	if err != nil {
		return err
	}
	if md.TenantID != tenant {
		return &InvalidTenantError{Tenant: tenant, Reason: "blob does not belong to this tenant"}
	}

	if err := c.chunks.Delete(id); err != nil {
		return err
	}
	return c.metadata.Delete(id, tenant)
}
