package bodycache

import "github.com/sirupsen/logrus"

// Key identifies the cache of one account folder
type Key struct {
	Account string
	Folder  string
}

// Set holds one Cache per account folder, created on first use
type Set struct {
	fetcher Fetcher
	archive Archive
	logger  *logrus.Logger
	caches  map[Key]*Cache
}

// NewSet creates an empty set. archive may be nil.
func NewSet(fetcher Fetcher, archive Archive, logger *logrus.Logger) *Set {
	return &Set{
		fetcher: fetcher,
		archive: archive,
		logger:  logger,
		caches:  make(map[Key]*Cache),
	}
}

// For returns the cache of account/folder
func (s *Set) For(account, folder string) *Cache {
	key := Key{Account: account, Folder: folder}
	c, ok := s.caches[key]
	if !ok {
		c = New(account, folder, s.fetcher, s.archive, s.logger)
		s.caches[key] = c
	}
	return c
}

// Len returns the number of folders with a cache
func (s *Set) Len() int {
	return len(s.caches)
}
