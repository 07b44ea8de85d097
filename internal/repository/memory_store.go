package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"playtrack/internal/models"
	"playtrack/internal/utils"
)

// MemoryRecordStore is an in-process RecordStore. Records are cloned on the
// way in and out so callers never share state with the store.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[RecordKey]memoryRecord
}

type memoryRecord struct {
	record  *models.CategoryRecord
	version int64
}

// NewMemoryRecordStore creates an empty store
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[RecordKey]memoryRecord)}
}

func (s *MemoryRecordStore) Get(childID string, category models.Category) (*models.CategoryRecord, error) {
	record, _, err := s.GetVersioned(childID, category)
	return record, err
}

func (s *MemoryRecordStore) GetVersioned(childID string, category models.Category) (*models.CategoryRecord, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.records[RecordKey{ChildID: childID, Category: category}]
	if !ok {
		return nil, 0, nil
	}
	return stored.record.Clone(), stored.version, nil
}

func (s *MemoryRecordStore) Put(childID string, category models.Category, record *models.CategoryRecord) error {
	if record == nil {
		return fmt.Errorf("failed to save category record: nil record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := RecordKey{ChildID: childID, Category: category}
	s.records[key] = memoryRecord{record: record.Clone(), version: s.records[key].version + 1}
	return nil
}

func (s *MemoryRecordStore) CompareAndPut(childID string, category models.Category, record *models.CategoryRecord, version int64) (bool, error) {
	if record == nil {
		return false, fmt.Errorf("failed to save category record: nil record")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := RecordKey{ChildID: childID, Category: category}
	if s.records[key].version != version {
		return false, nil
	}
	s.records[key] = memoryRecord{record: record.Clone(), version: version + 1}
	return true, nil
}

func (s *MemoryRecordStore) List() ([]RecordKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]RecordKey, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ChildID != keys[j].ChildID {
			return keys[i].ChildID < keys[j].ChildID
		}
		return keys[i].Category < keys[j].Category
	})
	return keys, nil
}

func (s *MemoryRecordStore) DeleteChild(childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.records {
		if key.ChildID == childID {
			delete(s.records, key)
		}
	}
	return nil
}

// MemoryChildStore is an in-process child store with the same semantics as
// ChildRepository. It does not touch records; pair it with a RecordStore.
type MemoryChildStore struct {
	mu       sync.RWMutex
	children map[string]models.Child
}

// NewMemoryChildStore creates an empty store
func NewMemoryChildStore() *MemoryChildStore {
	return &MemoryChildStore{children: make(map[string]models.Child)}
}

func (s *MemoryChildStore) CreateChild(name string, birthDate time.Time, guardianEmail string) (*models.Child, error) {
	now := time.Now().UTC()
	child := &models.Child{
		ID:            utils.NewID(),
		Name:          name,
		BirthDate:     dateOnly(birthDate),
		GuardianEmail: guardianEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.InsertChild(child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *MemoryChildStore) InsertChild(child *models.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.children[child.ID]; exists {
		return fmt.Errorf("failed to create child: id %s already exists", child.ID)
	}
	stored := *child
	stored.BirthDate = dateOnly(child.BirthDate)
	s.children[child.ID] = stored
	return nil
}

func (s *MemoryChildStore) GetChildByID(childID string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	child, ok := s.children[childID]
	if !ok {
		return nil, nil
	}
	return &child, nil
}

// GetAllChildren returns children ordered by name, like ChildRepository
func (s *MemoryChildStore) GetAllChildren() ([]models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]models.Child, 0, len(s.children))
	for _, child := range s.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Name != children[j].Name {
			return children[i].Name < children[j].Name
		}
		return children[i].ID < children[j].ID
	})
	return children, nil
}

func (s *MemoryChildStore) UpdateChild(childID, name string, birthDate time.Time, guardianEmail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	child, ok := s.children[childID]
	if !ok {
		return nil
	}
	child.Name = name
	child.BirthDate = dateOnly(birthDate)
	child.GuardianEmail = guardianEmail
	child.UpdatedAt = time.Now().UTC()
	s.children[childID] = child
	return nil
}

func (s *MemoryChildStore) DeleteChild(childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.children, childID)
	return nil
}

func (s *MemoryChildStore) DeleteAllChildren() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.children = make(map[string]models.Child)
	return nil
}
