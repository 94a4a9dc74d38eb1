package tectonic

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/stretchr/testify/require"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	co, err := Open(Config{RootDir: t.TempDir()})
	require.NoError(t, err, "Open error")
	t.Cleanup(func() { co.Close() })
	return co
}

func TestCoordinatorPutGetRoundTrip(t *testing.T) {
	co := newTestCoordinator(t)
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")

	payload := []byte("some opaque payload bytes")
	id, err := co.PutBlob("posts", bytes.NewReader(payload))
	require.NoError(t, err, "PutBlob error")

	reader, md, err := co.GetBlob("posts", id)
	require.NoError(t, err, "GetBlob error")
	defer reader.Close()

	retrieved, err := io.ReadAll(reader)
	require.NoError(t, err, "reading blob")
	require.Equal(t, payload, retrieved, "payload mismatch")
	require.Equal(t, id, md.BlobID, "metadata blob id")
	require.Equal(t, int64(len(payload)), md.Size, "metadata size")
}

func TestCoordinatorHelloWorldScenario(t *testing.T) {
	co := newTestCoordinator(t)
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")

	before := time.Now().UTC()
	id, err := co.PutBlob("posts", bytes.NewReader([]byte("Hello, World!")))
	require.NoError(t, err, "PutBlob error")

	records, skipped, err := co.ListBlobs("posts")
	require.NoError(t, err, "ListBlobs error")
	require.Zero(t, skipped, "no records should be skipped")
	require.Len(t, records, 1, "record count")
	require.Equal(t, id, records[0].BlobID, "blob id")
	require.Equal(t, int64(13), records[0].Size, "size")
	require.Equal(t, helloWorldSHA256, records[0].Checksum, "checksum")
	require.WithinDuration(t, before, records[0].CreatedAt, time.Minute, "creation timestamp")

	reader, _, err := co.GetBlob("posts", id)
	require.NoError(t, err, "GetBlob error")
	retrieved, err := io.ReadAll(reader)
	reader.Close()
	require.NoError(t, err, "reading blob")
	require.Equal(t, "Hello, World!", string(retrieved), "payload")

	require.NoError(t, co.DeleteBlob("posts", id), "DeleteBlob error")

	_, _, err = co.GetBlob("posts", id)
	require.True(t, IsBlobNotFound(err), "expected BlobNotFoundError after delete, got %v", err)

	records, _, err = co.ListBlobs("posts")
	require.NoError(t, err, "ListBlobs error")
	require.Empty(t, records, "listing after delete")
}

func TestCoordinatorRejectsUnregisteredTenant(t *testing.T) {
	co := newTestCoordinator(t)

	_, err := co.PutBlob("ghost", bytes.NewReader([]byte("data")))
	require.True(t, IsInvalidTenant(err), "PutBlob: expected InvalidTenantError, got %v", err)

	_, _, err = co.GetBlob("ghost", NewBlobID())
	require.True(t, IsInvalidTenant(err), "GetBlob: expected InvalidTenantError, got %v", err)

	_, _, err = co.ListBlobs("ghost")
	require.True(t, IsInvalidTenant(err), "ListBlobs: expected InvalidTenantError, got %v", err)

	err = co.DeleteBlob("ghost", NewBlobID())
	require.True(t, IsInvalidTenant(err), "DeleteBlob: expected InvalidTenantError, got %v", err)
}

func TestCoordinatorEnforcesOwnership(t *testing.T) {
	co := newTestCoordinator(t)
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")
	require.NoError(t, co.RegisterTenant("messages"), "RegisterTenant error")

	id, err := co.PutBlob("posts", bytes.NewReader([]byte("owned by posts")))
	require.NoError(t, err, "PutBlob error")

	// A registered tenant guessing another tenant's identifier must not
	// be able to read or delete the blob.
	_, _, err = co.GetBlob("messages", id)
	require.True(t, IsInvalidTenant(err), "GetBlob: expected InvalidTenantError, got %v", err)

	err = co.DeleteBlob("messages", id)
	require.True(t, IsInvalidTenant(err), "DeleteBlob: expected InvalidTenantError, got %v", err)

	// The owner still has full access.
	reader, _, err := co.GetBlob("posts", id)
	require.NoError(t, err, "owner GetBlob error")
	reader.Close()
}

func TestCoordinatorReRegisterTenant(t *testing.T) {
	co := newTestCoordinator(t)

	require.NoError(t, co.RegisterTenant("posts"), "first RegisterTenant error")
	require.NoError(t, co.RegisterTenant("posts"), "second RegisterTenant error")

	tenants, err := co.ListTenants()
	require.NoError(t, err, "ListTenants error")
	require.Equal(t, []TenantID{"posts"}, tenants, "tenant listed exactly once")
}

func TestCoordinatorDetectsCorruptionOnGet(t *testing.T) {
	co := newTestCoordinator(t)
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")

	id, err := co.PutBlob("posts", bytes.NewReader([]byte("integrity matters")))
	require.NoError(t, err, "PutBlob error")

	path := co.chunks.blobPath(id)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading stored content")
	data[len(data)-1] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o644), "writing corrupted content")

	_, _, err = co.GetBlob("posts", id)
	require.True(t, IsChecksumMismatch(err), "expected ChecksumMismatchError, got %v", err)
}

func TestCoordinatorListSkipsMissingRecords(t *testing.T) {
	co := newTestCoordinator(t)
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")

	keep, err := co.PutBlob("posts", bytes.NewReader([]byte("kept")))
	require.NoError(t, err, "PutBlob error")
	orphan, err := co.PutBlob("posts", bytes.NewReader([]byte("orphaned")))
	require.NoError(t, err, "PutBlob error")

	// Remove one record directly, leaving a dangling entry in the
	// tenant's blob list.
	err = co.metadata.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(blobKey(orphan))
	})
	require.NoError(t, err, "deleting record out from under the list")

	records, skipped, err := co.ListBlobs("posts")
	require.NoError(t, err, "ListBlobs error")
	require.Equal(t, 1, skipped, "skipped count")
	require.Len(t, records, 1, "remaining records")
	require.Equal(t, keep, records[0].BlobID, "surviving record")
}

type fixedIDs struct {
	ids  []BlobID
	next int
}

func (g *fixedIDs) NewBlobID() BlobID {
	id := g.ids[g.next]
	g.next++
	return id
}

func TestCoordinatorUsesInjectedIDGenerator(t *testing.T) {
	want := NewBlobID()
	co, err := Open(Config{
		RootDir: t.TempDir(),
		IDs:     &fixedIDs{ids: []BlobID{want}},
	})
	require.NoError(t, err, "Open error")
	t.Cleanup(func() { co.Close() })

	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")
	id, err := co.PutBlob("posts", bytes.NewReader([]byte("deterministic")))
	require.NoError(t, err, "PutBlob error")
	require.Equal(t, want, id, "generated id should come from the injected generator")
}

func TestCoordinatorStateSurvivesReopen(t *testing.T) {
	root := t.TempDir()

	co, err := Open(Config{RootDir: root})
	require.NoError(t, err, "Open error")
	require.NoError(t, co.RegisterTenant("posts"), "RegisterTenant error")
	id, err := co.PutBlob("posts", bytes.NewReader([]byte("durable")))
	require.NoError(t, err, "PutBlob error")
	require.NoError(t, co.Close(), "Close error")

	co, err = Open(Config{RootDir: root})
	require.NoError(t, err, "reopen error")
	t.Cleanup(func() { co.Close() })

	reader, md, err := co.GetBlob("posts", id)
	require.NoError(t, err, "GetBlob after reopen error")
	defer reader.Close()
	retrieved, err := io.ReadAll(reader)
	require.NoError(t, err, "reading blob")
	require.Equal(t, "durable", string(retrieved), "payload after reopen")
	require.Equal(t, TenantID("posts"), md.TenantID, "owner after reopen")
}
