package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itoqsky/credshield/internal/common"
	"github.com/itoqsky/credshield/internal/dbx"
	"github.com/itoqsky/credshield/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateIfAbsent inserts the record unless the username is taken. The single
// INSERT ... ON CONFLICT DO NOTHING makes the uniqueness check atomic.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, rec *models.CredentialRecord) (*models.CredentialRecord, error) {

	query :=
		`INSERT INTO credentials (username, password_hash, kdf_salt, cipher_iv, cipher_text, integrity_tag)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (username) DO NOTHING
         RETURNING id
         `

	err := r.db.QueryRowContext(ctx, query,
		rec.Username, rec.PasswordHash, rec.KDFSalt, rec.CipherIV, rec.CipherText, rec.IntegrityTag).Scan(&rec.ID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.CredentialRecord, error) {
	query :=
		`SELECT id, username, password_hash, kdf_salt, cipher_iv, cipher_text, integrity_tag, created_at FROM credentials
         WHERE username = $1
         `

	rec := &models.CredentialRecord{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&rec.ID, &rec.Username, &rec.PasswordHash, &rec.KDFSalt, &rec.CipherIV, &rec.CipherText, &rec.IntegrityTag, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !rec.Complete() {
		return nil, common.ErrIncompleteRecord
	}

	return rec, nil
}
