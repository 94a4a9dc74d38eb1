package tectonic

import (
	"fmt"

	"github.com/dgraph-io/badger"
)

// TenantRegistry is an append-only set of tenant identifiers backed by
// a persistent key presence index: the key set is the set of registered
// tenants, values are unused.
type TenantRegistry struct {
	db *badger.DB
}

// OpenTenantRegistry opens the registry index rooted at dir.
func OpenTenantRegistry(dir string) (*TenantRegistry, error) {
	db, err := openIndex(dir)
	if err != nil {
		return nil, err
	}
	return &TenantRegistry{db: db}, nil
}

// Close flushes and closes the underlying index.
func (r *TenantRegistry) Close() error {
	return r.db.Close()
}

// Register inserts the tenant into the registry. Re-registering an
// already-present tenant is a no-op success.
func (r *TenantRegistry) Register(tenant TenantID) error {
	if tenant == "" {
		return &InvalidTenantError{Tenant: tenant, Reason: "tenant id must not be empty"}
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tenant), []byte{})
	})
	if err != nil {
		return fmt.Errorf("register tenant %q: %w", tenant, err)
	}
	return nil
}

// Exists reports whether the tenant is registered.
func (r *TenantRegistry) Exists(tenant TenantID) (bool, error) {
	var found bool
	err := r.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(tenant))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("lookup tenant %q: %w", tenant, err)
	}
	return found, nil
}

// List enumerates all registered tenants in index order, which is not
// guaranteed to be sorted.
func (r *TenantRegistry) List() ([]TenantID, error) {
	var tenants []TenantID
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			tenants = append(tenants, TenantID(iter.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Validate fails with an InvalidTenantError if the tenant is not
// registered. Every tenant-scoped operation uses this as its
// precondition gate.
func (r *TenantRegistry) Validate(tenant TenantID) error {
	ok, err := r.Exists(tenant)
	if err != nil {
		return err
	}
	if !ok {
		return &InvalidTenantError{Tenant: tenant, Reason: "tenant is not registered"}
	}
	return nil
}
