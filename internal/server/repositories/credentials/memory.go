package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itoqsky/credshield/internal/common"
	"github.com/itoqsky/credshield/internal/server/models"
)

// MemoryRepository is a mutex-guarded in-memory store with the same
// insert-if-absent semantics as the Postgres implementation. Used in tests
// and when no database DSN is configured.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]models.CredentialRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.CredentialRecord)}
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, rec *models.CredentialRecord) (*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.Username]; exists {
		return nil, common.ErrDuplicateUser
	}

	stored := *rec
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.records[rec.Username] = stored

	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[username]
	if !exists {
		return nil, common.ErrNotFound
	}
	if !rec.Complete() {
		return nil, common.ErrIncompleteRecord
	}

	out := rec
	return &out, nil
}

// Put overwrites a record unconditionally. Only tests use it, to simulate
// storage tampering.
func (r *MemoryRepository) Put(rec *models.CredentialRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.Username] = *rec
}
