package store

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"resxai/pkg/domain"
)

// MemoryStore keeps accounts and records in-process. Used for local runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account // key: account ID
	email    map[string]string         // email -> account ID
	records  []domain.AnalysisRecord   // insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		email:    make(map[string]string),
	}
}

func (m *MemoryStore) CreateAccount(a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.email[a.Email]; exists {
		return ErrEmailTaken
	}
	m.accounts[a.ID] = a
	m.email[a.Email] = a.ID
	return nil
}

func (m *MemoryStore) UpdateAccount(a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.accounts[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// email, password and creation time are fixed after registration
	a.Email = current.Email
	a.PasswordHash = current.PasswordHash
	a.CreatedAt = current.CreatedAt
	m.accounts[a.ID] = a
	return nil
}

func (m *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.Account{}, false, nil
	}
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) GetAccountByID(id string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) SaveRecord(r domain.AnalysisRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.Skills = cloneStrings(r.Skills)
	r.MissingSkills = cloneStrings(r.MissingSkills)
	m.records = append(m.records, r)
	return nil
}

func (m *MemoryStore) ListRecordsByOwner(ownerID string) ([]domain.AnalysisRecord, error) {
	return m.filter(func(r domain.AnalysisRecord) bool { return r.OwnerID == ownerID }), nil
}

func (m *MemoryStore) ListRecordsSince(ownerID string, since time.Time) ([]domain.AnalysisRecord, error) {
	return m.filter(func(r domain.AnalysisRecord) bool {
		return r.OwnerID == ownerID && !r.CreatedAt.Before(since)
	}), nil
}

func (m *MemoryStore) DeleteRecordsByOwner(ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	deleted := 0
	for _, r := range m.records {
		if r.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

func (m *MemoryStore) filter(keep func(domain.AnalysisRecord) bool) []domain.AnalysisRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.AnalysisRecord, 0, len(m.records))
	for _, r := range m.records {
		if keep(r) {
			r.Skills = cloneStrings(r.Skills)
			r.MissingSkills = cloneStrings(r.MissingSkills)
			res = append(res, r)
		}
	}
	return res
}

func cloneStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}
