package bolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/canopy/pkg/ports"
	backend "go.etcd.io/bbolt"
)

// DefaultBucket holds every screen payload.
const DefaultBucket = "screens"

// Store implements ports.DocumentStore on a single bbolt database file.
// Bolt keys are sorted, so List needs no extra ordering.
type Store struct {
	db     *backend.DB
	bucket []byte
}

type Option func(*Store)

// WithBucket overrides the bucket name.
func WithBucket(name string) Option {
	return func(s *Store) {
		s.bucket = []byte(name)
	}
}

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := backend.Open(path, 0o600, &backend.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}
	s, err := NewFromDB(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an already open database.
func NewFromDB(db *backend.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, bucket: []byte(DefaultBucket)}
	for _, opt := range opts {
		opt(s)
	}
	err := db.Update(func(tx *backend.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bucket %s: %w", s.bucket, err)
	}
	return s, nil
}

// Fetch returns a copy of the stored payload. Bolt values are only valid
// inside the transaction.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *backend.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.New("screen name cannot be empty")
	}
	return s.db.Update(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(name), data)
	})
}

func (s *Store) Delete(ctx context.Context, name string) error {
	return s.db.Update(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(name))
	})
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.View(func(tx *backend.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}
