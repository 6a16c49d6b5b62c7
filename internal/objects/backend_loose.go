package objects

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/gocaf/internal/constants"
	"github.com/google/renameio"
)

// LooseBackend stores each object as its own file at objects/<first 2 chars>/<rest>.
type LooseBackend struct {
	objectsDir string
}

func NewLooseBackend(objectsDir string) *LooseBackend {
	return &LooseBackend{
		objectsDir: objectsDir,
	}
}

func (b *LooseBackend) objectPath(hash string) (dir, file string) {
	dir = filepath.Join(b.objectsDir, hash[:constants.HashDirPrefixLength])
	return dir, filepath.Join(dir, hash[constants.HashDirPrefixLength:])
}

// Put writes data atomically. Existing objects are left untouched (content-addressable).
func (b *LooseBackend) Put(hash string, data []byte) error {
	objectDir, objectFile := b.objectPath(hash)

	_, err := os.Stat(objectFile)
	if err == nil {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(objectDir, constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	// Readers never observe a partially written object
	if err := renameio.WriteFile(objectFile, data, constants.FilePerms); err != nil {
		return fmt.Errorf("failed to write object file: %w", err)
	}

	return nil
}

func (b *LooseBackend) Get(hash string) ([]byte, error) {
	_, objectFile := b.objectPath(hash)

	data, err := os.ReadFile(objectFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}
	return data, nil
}

func (b *LooseBackend) Has(hash string) (bool, error) {
	_, objectFile := b.objectPath(hash)

	_, err := os.Stat(objectFile)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (b *LooseBackend) Close() error {
	return nil
}
