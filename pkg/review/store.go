package review

import (
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.crevgui.dev/pkg/testutil"
)

// Store keeps reviews and the known versions of crates.
type Store interface {
	Review(key string) (Review, error)
	Reviews() ([]Review, error)
	PutReview(r Review) error
	DelReview(key string) error

	AddVersions(name string, versions ...string) error
	Versions(name string) ([]string, error)
	Crates() ([]Crate, error)
}

// DBStore is a Store backed by a database file.
type DBStore interface {
	Store
	Close() error
}

// ErrNoReview is returned when there is no review with the requested key.
var ErrNoReview = errors.New("no such review")

// Crate summarizes what is known about a crate.
type Crate struct {
	Name     string
	Versions int
	Reviews  int
}

var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db *bolt.DB
}

// NewStore opens the database file, creating it if it doesn't exist.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Println("opened store", dbname)
	return &dbStore{db}, nil
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}

// MustTempStore returns a Store backed by a temporary file, which is removed
// when c is cleaned up.
func MustTempStore(c testutil.Cleanuper) DBStore {
	f, err := os.CreateTemp("", "crevgui.test")
	if err != nil {
		panic(fmt.Sprintf("failed to open temp file: %v", err))
	}
	f.Close()
	st, err := NewStore(f.Name())
	if err != nil {
		panic(fmt.Sprintf("failed to create Store instance: %v", err))
	}
	c.Cleanup(func() {
		st.Close()
		if err := os.Remove(f.Name()); err != nil {
			fmt.Fprintln(os.Stderr, "failed to remove temp file:", err)
		}
	})
	return st
}
