package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/savekit/pkg/gta3"
)

type saveRecord struct {
	ID        string
	Digest    string
	CreatedAt time.Time
	Save      *gta3.SaveFile
	// mu serializes Save calls and edits on the aggregate.
	mu sync.Mutex
}

// SaveStore keeps uploaded saves in memory, keyed by ID and by content
// digest so re-uploading the same bytes returns the existing record.
type SaveStore struct {
	mu       sync.Mutex
	saves    map[string]*saveRecord
	byDigest map[string]string
}

func NewSaveStore() *SaveStore {
	return &SaveStore{
		saves:    make(map[string]*saveRecord),
		byDigest: make(map[string]string),
	}
}

// Put stores sf under digest. It reports false with the existing record
// when the digest is already stored.
func (s *SaveStore) Put(digest string, sf *gta3.SaveFile, now time.Time) (*saveRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byDigest[digest]; ok {
		return s.saves[id], false
	}
	rec := &saveRecord{
		ID:        newSaveID(),
		Digest:    digest,
		CreatedAt: now,
		Save:      sf,
	}
	s.saves[rec.ID] = rec
	s.byDigest[digest] = rec.ID
	return rec, true
}

func (s *SaveStore) Get(id string) (*saveRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.saves[id]
	if !ok {
		return nil, notFound(id)
	}
	return rec, nil
}

func (s *SaveStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.saves[id]
	if !ok {
		return notFound(id)
	}
	delete(s.saves, id)
	delete(s.byDigest, rec.Digest)
	return nil
}

func (s *SaveStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func newSaveID() string {
	return "save_" + uuid.NewString()
}
