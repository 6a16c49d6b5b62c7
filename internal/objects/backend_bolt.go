package objects

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"
)

const boltObjectsBucket = "objects"

// BoltBackend stores all objects in a single bbolt database file.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBoltBackend opens (or creates) the database at path.
func OpenBoltBackend(path string) (*BoltBackend, error) {
	if path == "" {
		return nil, errors.New("bolt database path is required")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open object database %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltObjectsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create objects bucket: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Put(hash string, data []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}

		if bucket.Get([]byte(hash)) != nil {
			slog.Debug("Object with this hash already exists",
				"hash", hash)
			return nil
		}

		return bucket.Put([]byte(hash), data)
	})
}

func (b *BoltBackend) Get(hash string) ([]byte, error) {
	var result []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}

		value := bucket.Get([]byte(hash))
		if value == nil {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, hash)
		}

		// Values are only valid for the lifetime of the transaction
		result = bytes.Clone(value)
		return nil
	})
	return result, err
}

func (b *BoltBackend) Has(hash string) (bool, error) {
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}
		found = bucket.Get([]byte(hash)) != nil
		return nil
	})
	return found, err
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
