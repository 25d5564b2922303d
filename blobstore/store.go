package blobstore

import (
	"crypto/sha1"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ErrNotFound reports a digest with no stored blob.
var ErrNotFound = errors.New("blobstore: blob not found")

// Options configures a Store.
type Options struct {
	// Dir is the directory for the database files. Required unless InMemory
	// is set.
	Dir string

	// InMemory keeps all blobs in memory, with no files on disk.
	InMemory bool

	// Logger receives store diagnostics. Badger's own chatter is silenced.
	Logger *zap.Logger
}

// Store holds blobs keyed by the SHA-1 of their content.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens or creates the store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("blobstore: Options.Dir is required for on-disk mode")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(nil)

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Digest returns the key under which blob would be stored.
func Digest(blob []byte) []byte {
	sum := sha1.Sum(blob)
	return sum[:]
}

// Put stores blob and returns its digest.
func (s *Store) Put(blob []byte) ([]byte, error) {
	key := Digest(blob)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, blob)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("blob stored", zap.Int("size", len(blob)))
	return key, nil
}

// Get returns the blob stored under digest, or ErrNotFound if the bytes have
// not arrived yet.
func (s *Store) Get(digest []byte) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(digest)
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Has reports whether the digest's blob is present.
func (s *Store) Has(digest []byte) bool {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(digest)
		return err
	})
	return err == nil
}

// Blob returns the stored blob for digest with a presence flag. It is the
// lookup form the API's lazy comment/description hydration consumes.
func (s *Store) Blob(digest []byte) ([]byte, bool) {
	blob, err := s.Get(digest)
	if err != nil {
		return nil, false
	}
	return blob, true
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
