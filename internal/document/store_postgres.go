package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
	txcontext "vault/pkg/platform/tx"
)

// PostgresStore persists documents in the documents table. The unique
// constraint on (authority_id, document_number) backs per-authority number
// uniqueness; the version column backs optimistic updates.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const documentColumns = `
	id, application_id, owner_id, document_type, document_number, authority_id,
	issue_date, expiry_date, status, fingerprint, anchor_id,
	file_ref, revocation_reason, last_verified_at, version, created_at`

func (s *PostgresStore) Save(ctx context.Context, doc Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ApplicationID),
		uuid.UUID(doc.OwnerID),
		string(doc.Type),
		doc.DocumentNumber,
		uuid.UUID(doc.AuthorityID),
		doc.IssueDate,
		doc.ExpiryDate,
		string(doc.Status),
		doc.Fingerprint,
		nullableUUID(uuid.UUID(doc.AnchorID)),
		doc.FileRef,
		nullableString(doc.RevocationReason),
		doc.LastVerifiedAt,
		doc.Version,
		doc.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, doc Document) error {
	query := `
		UPDATE documents
		SET status = $1, fingerprint = $2, anchor_id = $3, revocation_reason = $4,
		    last_verified_at = $5, expiry_date = $6, version = $7
		WHERE id = $8 AND version = $9
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(doc.Status),
		doc.Fingerprint,
		nullableUUID(uuid.UUID(doc.AnchorID)),
		nullableString(doc.RevocationReason),
		doc.LastVerifiedAt,
		doc.ExpiryDate,
		doc.Version,
		uuid.UUID(doc.ID),
		doc.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or a concurrent writer bumped the version.
		if _, findErr := s.FindByID(ctx, doc.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, documentID id.DocumentID) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, uuid.UUID(documentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) FindByApplication(ctx context.Context, applicationID id.ApplicationID) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE application_id = $1`
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, uuid.UUID(applicationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, sentinel.ErrNotFound
		}
		return Document{}, fmt.Errorf("find document by application: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.queryDocuments(ctx, query, uuid.UUID(ownerID))
}

func (s *PostgresStore) ListVerifiedUnanchored(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE status = 'verified' AND anchor_id IS NULL`
	return s.queryDocuments(ctx, query)
}

func (s *PostgresStore) queryDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc              Document
		docID, ownerID   uuid.UUID
		applicationID    uuid.UUID
		authorityID      uuid.UUID
		docType, status  string
		anchorID         *uuid.UUID
		revocationReason sql.NullString
	)
	err := row.Scan(
		&docID, &applicationID, &ownerID, &docType, &doc.DocumentNumber, &authorityID,
		&doc.IssueDate, &doc.ExpiryDate, &status, &doc.Fingerprint, &anchorID,
		&doc.FileRef, &revocationReason, &doc.LastVerifiedAt, &doc.Version, &doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	doc.ID = id.DocumentID(docID)
	doc.ApplicationID = id.ApplicationID(applicationID)
	doc.OwnerID = id.UserID(ownerID)
	doc.AuthorityID = id.AuthorityID(authorityID)
	doc.Type = id.DocumentType(docType)
	doc.Status = Status(status)
	if anchorID != nil {
		doc.AnchorID = id.AnchorID(*anchorID)
	}
	if revocationReason.Valid {
		doc.RevocationReason = revocationReason.String
	}
	return doc, nil
}

func nullableUUID(u uuid.UUID) *uuid.UUID {
	if u == uuid.Nil {
		return nil
	}
	return &u
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
