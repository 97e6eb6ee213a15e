package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "vault/pkg/domain"
	txcontext "vault/pkg/platform/tx"
)

// PostgresStore persists access-log entries in the access_log table.
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

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO access_log (id, document_id, actor_id, actor_name, access_type, source_addr, user_agent, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID,
		uuid.UUID(entry.DocumentID),
		entry.ActorID,
		entry.ActorName,
		string(entry.AccessType),
		entry.SourceAddr,
		entry.UserAgent,
		entry.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert access log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDocument(ctx context.Context, documentID id.DocumentID) ([]Entry, error) {
	query := `
		SELECT id, document_id, actor_id, actor_name, access_type, source_addr, user_agent, occurred_at
		FROM access_log
		WHERE document_id = $1
		ORDER BY occurred_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(documentID))
	if err != nil {
		return nil, fmt.Errorf("query access log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			docID      uuid.UUID
			accessType string
		)
		err := rows.Scan(&entry.ID, &docID, &entry.ActorID, &entry.ActorName, &accessType, &entry.SourceAddr, &entry.UserAgent, &entry.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan access log entry: %w", err)
		}
		entry.DocumentID = id.DocumentID(docID)
		entry.AccessType = id.AccessType(accessType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access log: %w", err)
	}
	return entries, nil
}
