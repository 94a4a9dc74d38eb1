package tectonic

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	jsoniter "github.com/json-iterator/go"
)

// BlobMetadata is the record kept for every stored blob. It is created
// exactly once per successful write, immutable thereafter, and
// destroyed on delete. Size and checksum are derived at write time and
// re-validated at every subsequent read.
type BlobMetadata struct {
	BlobID    BlobID    `json:"blob_id"`
	TenantID  TenantID  `json:"tenant_id"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// MetadataStore is a persistent mapping from blob identifier to
// metadata record, plus a secondary per-tenant list of blob
// identifiers. Keys are "blob:<id>" and "tenant:<id>:blobs". The record
// and the list are two related but independently-written entries; a
// crash between the two writes can leave a record unreachable from
// tenant listing.
type MetadataStore struct {
	db *badger.DB
}

// OpenMetadataStore opens the metadata index rooted at dir.
func OpenMetadataStore(dir string) (*MetadataStore, error) {
	db, err := openIndex(dir)
	if err != nil {
		return nil, err
	}
	return &MetadataStore{db: db}, nil
}

// Close flushes and closes the underlying index.
func (m *MetadataStore) Close() error {
	return m.db.Close()
}

func blobKey(id BlobID) []byte {
	return []byte("blob:" + id.String())
}

func tenantBlobsKey(tenant TenantID) []byte {
	return []byte("tenant:" + string(tenant) + ":blobs")
}

// Put stores the record under its blob key, then appends the blob id to
// the owning tenant's list if not already present.
func (m *MetadataStore) Put(md *BlobMetadata) error {
	data, err := jsoniter.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blobKey(md.BlobID), data)
	})
	if err != nil {
		return fmt.Errorf("store metadata for %s: %w", md.BlobID, err)
	}

	ids, err := m.ListForTenant(md.TenantID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == md.BlobID {
			return nil
		}
	}
	ids = append(ids, md.BlobID)
	return m.writeTenantBlobs(md.TenantID, ids)
}

// Get retrieves the record stored for id, failing with a
// BlobNotFoundError if none exists.
func (m *MetadataStore) Get(id BlobID) (*BlobMetadata, error) {
	var md BlobMetadata
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if err == badger.ErrKeyNotFound {
			return &BlobNotFoundError{ID: id}
		}
		if err != nil {
			return err
		}
		data, err := item.Value()
		if err != nil {
			return err
		}
		if err := jsoniter.Unmarshal(data, &md); err != nil {
			return fmt.Errorf("unmarshal metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		if IsBlobNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("load metadata for %s: %w", id, err)
	}
	return &md, nil
}

// ListForTenant returns the tenant's persisted blob id list, or an
// empty list if the tenant has never written a blob.
func (m *MetadataStore) ListForTenant(tenant TenantID) ([]BlobID, error) {
	var ids []BlobID
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tenantBlobsKey(tenant))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := item.Value()
		if err != nil {
			return err
		}
		if err := jsoniter.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("unmarshal blob list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load blob list for %q: %w", tenant, err)
	}
	return ids, nil
}

// Delete removes id from the tenant's blob list and deletes the record.
// Absence of either entry is tolerated.
func (m *MetadataStore) Delete(id BlobID, tenant TenantID) error {
	ids, err := m.ListForTenant(tenant)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) != len(ids) {
		if err := m.writeTenantBlobs(tenant, kept); err != nil {
			return err
		}
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(blobKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete metadata for %s: %w", id, err)
	}
	return nil
}

func (m *MetadataStore) writeTenantBlobs(tenant TenantID, ids []BlobID) error {
	data, err := jsoniter.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal blob list: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tenantBlobsKey(tenant), data)
	})
	if err != nil {
		return fmt.Errorf("store blob list for %q: %w", tenant, err)
	}
	return nil
}
