package tectonic

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
)

// openIndex opens a badger key-value index rooted at dir, creating the
// directory if needed.
func openIndex(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	opts := badger.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}
	return db, nil
}
