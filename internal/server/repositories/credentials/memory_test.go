package credentials

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itoqsky/credshield/internal/common"
	"github.com/itoqsky/credshield/internal/server/models"
)

func memRecord(username string) *models.CredentialRecord {
	return &models.CredentialRecord{
		Username:     username,
		PasswordHash: "$argon2id$hash",
		KDFSalt:      "c2FsdA==",
		CipherIV:     "aXY=",
		CipherText:   "Y2lwaGVy",
		IntegrityTag: "dGFn",
	}
}

func TestMemory_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.CreateIfAbsent(ctx, memRecord("alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "$argon2id$hash", found.PasswordHash)
}

func TestMemory_FindUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_Duplicate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, memRecord("alice"))
	require.NoError(t, err)

	_, err = repo.CreateIfAbsent(ctx, memRecord("alice"))
	assert.ErrorIs(t, err, common.ErrDuplicateUser)
}

func TestMemory_IncompleteRecordRejected(t *testing.T) {
	repo := NewMemoryRepository()

	rec := memRecord("alice")
	rec.IntegrityTag = ""
	repo.Put(rec)

	_, err := repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, common.ErrIncompleteRecord)
}

func TestMemory_FindReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.CreateIfAbsent(ctx, memRecord("alice"))
	require.NoError(t, err)

	first, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	first.CipherText = "mutated"

	second, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Y2lwaGVy", second.CipherText)
}

func TestMemory_ConcurrentCreate_ExactlyOneWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.CreateIfAbsent(ctx, memRecord("alice"))
		}(i)
	}
	wg.Wait()

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, common.ErrDuplicateUser):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, goroutines-1, duplicates)
}
