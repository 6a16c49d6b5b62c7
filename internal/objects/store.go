package objects

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"path/filepath"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/KostasZigo/gocaf/utils"
)

// Backend persists compressed object bytes keyed by hash.
type Backend interface {
	// Put stores data under hash. Storing an existing hash is a no-op.
	Put(hash string, data []byte) error

	// Get returns the data stored under hash or an error wrapping ErrObjectNotFound.
	Get(hash string) ([]byte, error)

	// Has reports whether hash is stored.
	Has(hash string) (bool, error)

	Close() error
}

// ObjectStore manages storage of objects
type ObjectStore struct {
	backend Backend
}

// NewObjectStore returns a store over loose object files in <repoPath>/.caf/objects.
func NewObjectStore(repoPath string) *ObjectStore {
	return NewObjectStoreWithBackend(NewLooseBackend(filepath.Join(repoPath, constants.RepoDir, constants.Objects)))
}

func NewObjectStoreWithBackend(backend Backend) *ObjectStore {
	return &ObjectStore{
		backend: backend,
	}
}

// Store compresses and saves an object under its hash.
// Returns nil if object already exists
func (store *ObjectStore) Store(obj Object) error {
	compressedData, err := store.compressObject(obj)
	if err != nil {
		return fmt.Errorf("failed to compress object: %w", err)
	}

	if err := store.backend.Put(obj.Hash(), compressedData); err != nil {
		return fmt.Errorf("failed to write object %s: %w", obj.Hash(), err)
	}

	return nil
}

func (store *ObjectStore) compressObject(obj Object) ([]byte, error) {
	var buffer bytes.Buffer
	// Crete a new writer that compresses and writes data to the buffer
	writer := zlib.NewWriter(&buffer)

	if _, err := writer.Write(obj.Data()); err != nil {
		return nil, err
	}

	// Call Close in order to flush any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Read loads, decompresses, parses and verifies an object by hash
func (store *ObjectStore) Read(hash string) (Object, error) {
	if err := utils.ValidateHash(hash); err != nil {
		return nil, err
	}

	compressedData, err := store.backend.Get(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", hash, err)
	}

	reader, err := zlib.NewReader(bytes.NewReader(compressedData))
	if err != nil {
		return nil, fmt.Errorf("failed to create new reader for decompressed data: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed data: %w", err)
	}

	obj, err := ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %s: %w", hash, err)
	}

	if obj.Hash() != hash {
		return nil, fmt.Errorf("hash mismatch: expected %s, got %s", hash, obj.Hash())
	}

	return obj, nil
}

// ReadBlob reads an object and requires it to be a blob
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	return readAs[*Blob](store, hash, utils.BlobObjectType)
}

// ReadTree reads an object and requires it to be a tree
func (store *ObjectStore) ReadTree(hash string) (*Tree, error) {
	return readAs[*Tree](store, hash, utils.TreeObjectType)
}

// ReadCommit reads an object and requires it to be a commit
func (store *ObjectStore) ReadCommit(hash string) (*Commit, error) {
	return readAs[*Commit](store, hash, utils.CommitObjectType)
}

// ReadTag reads an object and requires it to be a tag
func (store *ObjectStore) ReadTag(hash string) (*Tag, error) {
	return readAs[*Tag](store, hash, utils.TagObjectType)
}

func readAs[T Object](store *ObjectStore, hash string, expected utils.ObjectType) (T, error) {
	var zero T

	obj, err := store.Read(hash)
	if err != nil {
		return zero, err
	}

	typed, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is a %s, not a %s", ErrUnexpectedType, hash, obj.Type(), expected)
	}
	return typed, nil
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) bool {
	if !utils.IsValidHash(hash) {
		return false
	}
	found, err := store.backend.Has(hash)
	return err == nil && found
}

// Close releases the underlying backend.
func (store *ObjectStore) Close() error {
	return store.backend.Close()
}
