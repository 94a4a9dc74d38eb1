package tectonic

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const chunksDir = "chunks"

// BlobInfo describes one persisted blob payload.
type BlobInfo struct {
	Size     int64
	Checksum string
}

// ChunkStore persists blob payloads on the local filesystem under
// <root>/chunks. Each blob is stored as <id>.blob next to a sidecar
// <id>.blob.chk file holding the hex SHA-256 digest of the content.
// Both paths are pure functions of the blob identifier.
type ChunkStore struct {
	root string
}

// NewChunkStore creates a ChunkStore rooted at root, creating the
// chunks directory if needed.
func NewChunkStore(root string) (*ChunkStore, error) {
	if root == "" {
		return nil, fmt.Errorf("chunk store root must not be empty")
	}
	if err := os.MkdirAll(filepath.Join(root, chunksDir), 0o755); err != nil {
		return nil, fmt.Errorf("create chunks dir: %w", err)
	}
	return &ChunkStore{root: root}, nil
}

func (s *ChunkStore) blobPath(id BlobID) string {
	return filepath.Join(s.root, chunksDir, id.String()+".blob")
}

func (s *ChunkStore) checksumPath(id BlobID) string {
	return s.blobPath(id) + ".chk"
}

// Put writes the payload from r under id and returns its size and
// digest. The payload is spooled to a temporary file in the chunks
// directory (same filesystem as the destination), the digest is
// computed by rewinding the temp file rather than re-reading r, the
// sidecar digest file is written, and only then is the temp file
// renamed into place. A reader can therefore never observe a content
// file without its digest already on disk.
func (s *ChunkStore) Put(id BlobID, r io.Reader) (BlobInfo, error) {
	tmp, err := os.CreateTemp(filepath.Join(s.root, chunksDir), ".put-*")
	if err != nil {
		return BlobInfo{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return BlobInfo{}, fmt.Errorf("write blob payload: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return BlobInfo{}, fmt.Errorf("rewind temp file: %w", err)
	}
	checksum, err := ComputeSHA256(tmp)
	if err != nil {
		return BlobInfo{}, err
	}

	if err := os.WriteFile(s.checksumPath(id), []byte(checksum), 0o644); err != nil {
		return BlobInfo{}, fmt.Errorf("write checksum file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return BlobInfo{}, fmt.Errorf("close temp file: %w", err)
	}
	if err := moveFile(tmpPath, s.blobPath(id)); err != nil {
		return BlobInfo{}, fmt.Errorf("persist blob: %w", err)
	}

	return BlobInfo{Size: size, Checksum: checksum}, nil
}

// Get opens the blob stored under id, verifying its content against the
// stored digest before returning. On mismatch it fails with a
// ChecksumMismatchError carrying both digests, so corrupted bytes are
// never handed back undetected.
func (s *ChunkStore) Get(id BlobID) (io.ReadCloser, BlobInfo, error) {
	f, err := os.Open(s.blobPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, BlobInfo{}, &BlobNotFoundError{ID: id}
		}
		return nil, BlobInfo{}, fmt.Errorf("open blob file: %w", err)
	}

	chk, err := os.ReadFile(s.checksumPath(id))
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, fmt.Errorf("read checksum file: %w", err)
	}
	expected := strings.TrimSpace(string(chk))

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, fmt.Errorf("stat blob file: %w", err)
	}

	actual, err := ComputeSHA256(f)
	if err != nil {
		f.Close()
		return nil, BlobInfo{}, err
	}
	if actual != expected {
		f.Close()
		return nil, BlobInfo{}, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, BlobInfo{}, fmt.Errorf("rewind blob file: %w", err)
	}

	return f, BlobInfo{Size: info.Size(), Checksum: expected}, nil
}

// Delete removes the blob and its checksum file. Deleting an id that
// was never stored is not an error.
func (s *ChunkStore) Delete(id BlobID) error {
	if err := os.Remove(s.blobPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob file: %w", err)
	}
	if err := os.Remove(s.checksumPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checksum file: %w", err)
	}
	return nil
}
