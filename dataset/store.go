package dataset

import (
	"sync/atomic"
)

// Store holds the dataset being served. Loads swap the whole pointer, so a
// reader keeps a consistent snapshot for as long as it holds one.
type Store struct {
	current atomic.Pointer[Dataset]
}

// NewStore returns a Store serving ds, which may be nil.
func NewStore(ds *Dataset) *Store {
	s := &Store{}
	if ds != nil {
		s.current.Store(ds)
	}
	return s
}

// Current returns the dataset in use, or nil before the first load.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// Replace installs ds and returns the dataset it replaced.
func (s *Store) Replace(ds *Dataset) *Dataset {
	return s.current.Swap(ds)
}
