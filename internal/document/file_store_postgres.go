package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vault/pkg/platform/sentinel"
)

// PostgresFileStore keeps document artifacts in the document_files table.
// Artifacts are small rendered records, not scans, so a bytea column beats
// running a second storage system.
type PostgresFileStore struct {
	db *sql.DB
}

func NewPostgresFileStore(db *sql.DB) *PostgresFileStore {
	return &PostgresFileStore{db: db}
}

func (s *PostgresFileStore) Put(ctx context.Context, fileRef string, content []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO document_files (file_ref, content)
		VALUES ($1, $2)
		ON CONFLICT (file_ref) DO UPDATE SET content = EXCLUDED.content
	`, fileRef, content)
	if err != nil {
		return fmt.Errorf("put document file: %w", err)
	}
	return nil
}

func (s *PostgresFileStore) Get(ctx context.Context, fileRef string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM document_files WHERE file_ref = $1`, fileRef,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get document file: %w", err)
	}
	return content, nil
}
