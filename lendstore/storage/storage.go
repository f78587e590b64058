// Package storage provides the persistence model for the lending store.
// It defines the snapshot written to disk, the interface a persistence
// backend implements, and the lock discipline shared by every library operation.
package storage

import (
	"time"

	"github.com/arthur-debert/lendstore/types"
)

// CurrentVersion is written into every snapshot. Loading any other version fails.
const CurrentVersion = "1"

// Snapshot is the whole library as one value. Each collection is kept in insertion order.
type Snapshot struct {
	Metadata  Metadata         `json:"metadata" yaml:"metadata" msgpack:"metadata"`
	Books     []types.Book     `json:"books" yaml:"books" msgpack:"books"`
	Users     []types.User     `json:"users" yaml:"users" msgpack:"users"`
	Checkouts []types.Checkout `json:"checkouts" yaml:"checkouts" msgpack:"checkouts"`
}

// Metadata contains storage metadata
type Metadata struct {
	Version string    `json:"version" yaml:"version" msgpack:"version"`
	SavedAt time.Time `json:"saved_at" yaml:"saved_at" msgpack:"saved_at"`
}

// NewSnapshot returns an empty snapshot stamped with the current version.
func NewSnapshot(savedAt time.Time) *Snapshot {
	return &Snapshot{
		Metadata:  Metadata{Version: CurrentVersion, SavedAt: savedAt},
		Books:     []types.Book{},
		Users:     []types.User{},
		Checkouts: []types.Checkout{},
	}
}

// Storage loads and saves the whole library as a single unit.
type Storage interface {
	// Load returns the last saved snapshot. A nil snapshot with a nil error means
	// there is no prior state and the caller should start empty.
	Load() (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(data *Snapshot) error

	// Close releases any resources held by the storage
	Close() error
}
