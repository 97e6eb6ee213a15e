package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
)

// PostgresStore persists grants in the share_grants table. Access counting
// relies on a single UPDATE so concurrent token uses never lose increments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const grantColumns = `id, document_id, grantor_id, recipient, purpose, permissions,
       token_digest, status, access_count, issued_at, expires_at`

func (s *PostgresStore) Save(ctx context.Context, grant Grant) error {
	query := `
		INSERT INTO share_grants (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(grant.ID),
		uuid.UUID(grant.DocumentID),
		uuid.UUID(grant.GrantorID),
		grant.Recipient,
		grant.Purpose,
		joinPermissions(grant.Permissions),
		grant.TokenDigest,
		string(grant.Status),
		grant.AccessCount,
		grant.IssuedAt,
		grant.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert share grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, grantID id.GrantID) (Grant, error) {
	query := `SELECT ` + grantColumns + ` FROM share_grants WHERE id = $1`
	return s.queryGrant(ctx, query, uuid.UUID(grantID))
}

func (s *PostgresStore) FindByDigest(ctx context.Context, tokenDigest string) (Grant, error) {
	query := `SELECT ` + grantColumns + ` FROM share_grants WHERE token_digest = $1`
	return s.queryGrant(ctx, query, tokenDigest)
}

func (s *PostgresStore) ListByGrantor(ctx context.Context, grantorID id.UserID) ([]Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM share_grants
		WHERE grantor_id = $1
		ORDER BY issued_at DESC
	`
	return s.queryGrants(ctx, query, uuid.UUID(grantorID))
}

func (s *PostgresStore) ListByDocument(ctx context.Context, documentID id.DocumentID) ([]Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM share_grants
		WHERE document_id = $1
		ORDER BY issued_at DESC
	`
	return s.queryGrants(ctx, query, uuid.UUID(documentID))
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, grantID id.GrantID, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE share_grants SET status = $1 WHERE id = $2`,
		string(status), uuid.UUID(grantID),
	)
	if err != nil {
		return fmt.Errorf("update share grant status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update share grant rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) IncrementAccessCount(ctx context.Context, grantID id.GrantID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE share_grants SET access_count = access_count + 1 WHERE id = $1 RETURNING access_count`,
		uuid.UUID(grantID),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment share grant access count: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) queryGrant(ctx context.Context, query string, arg any) (Grant, error) {
	grant, err := scanGrant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Grant{}, sentinel.ErrNotFound
		}
		return Grant{}, fmt.Errorf("find share grant: %w", err)
	}
	return grant, nil
}

func (s *PostgresStore) queryGrants(ctx context.Context, query string, args ...any) ([]Grant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query share grants: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate share grants: %w", err)
	}
	return grants, nil
}

func scanGrant(row interface{ Scan(dest ...any) error }) (Grant, error) {
	var (
		grant       Grant
		grantID     uuid.UUID
		documentID  uuid.UUID
		grantorID   uuid.UUID
		permissions string
		status      string
	)
	err := row.Scan(
		&grantID, &documentID, &grantorID, &grant.Recipient, &grant.Purpose,
		&permissions, &grant.TokenDigest, &status, &grant.AccessCount,
		&grant.IssuedAt, &grant.ExpiresAt,
	)
	if err != nil {
		return Grant{}, err
	}
	grant.ID = id.GrantID(grantID)
	grant.DocumentID = id.DocumentID(documentID)
	grant.GrantorID = id.UserID(grantorID)
	grant.Status = Status(status)
	grant.Permissions = splitPermissions(permissions)
	return grant, nil
}

func joinPermissions(permissions []id.Permission) string {
	parts := make([]string, len(permissions))
	for i, p := range permissions {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

func splitPermissions(joined string) []id.Permission {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	permissions := make([]id.Permission, len(parts))
	for i, p := range parts {
		permissions[i] = id.Permission(p)
	}
	return permissions
}
