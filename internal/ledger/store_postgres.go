package ledger

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

// PostgresStore persists anchors in the ledger_anchors table. The UNIQUE
// constraint on document_id is what enforces write-once anchoring under
// concurrent issuance.
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

func (s *PostgresStore) Save(ctx context.Context, anchor Anchor) error {
	query := `
		INSERT INTO ledger_anchors (id, document_id, fingerprint, chain_ref, anchored_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(anchor.ID),
		uuid.UUID(anchor.DocumentID),
		anchor.Fingerprint,
		anchor.ChainRef,
		anchor.AnchoredAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert anchor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDocument(ctx context.Context, documentID id.DocumentID) (Anchor, error) {
	query := `
		SELECT id, document_id, fingerprint, chain_ref, anchored_at
		FROM ledger_anchors
		WHERE document_id = $1
	`
	var (
		anchor   Anchor
		anchorID uuid.UUID
		docID    uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(documentID)).Scan(
		&anchorID, &docID, &anchor.Fingerprint, &anchor.ChainRef, &anchor.AnchoredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Anchor{}, sentinel.ErrNotFound
		}
		return Anchor{}, fmt.Errorf("find anchor: %w", err)
	}
	anchor.ID = id.AnchorID(anchorID)
	anchor.DocumentID = id.DocumentID(docID)
	return anchor, nil
}

func (s *PostgresStore) ListDocumentIDs(ctx context.Context) ([]id.DocumentID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document_id FROM ledger_anchors`)
	if err != nil {
		return nil, fmt.Errorf("list anchored documents: %w", err)
	}
	defer rows.Close()

	var ids []id.DocumentID
	for rows.Next() {
		var docID uuid.UUID
		if err := rows.Scan(&docID); err != nil {
			return nil, fmt.Errorf("scan anchored document id: %w", err)
		}
		ids = append(ids, id.DocumentID(docID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchored documents: %w", err)
	}
	return ids, nil
}
