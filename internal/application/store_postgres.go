package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "vault/pkg/domain"
	"vault/pkg/platform/sentinel"
	txcontext "vault/pkg/platform/tx"
)

// PostgresStore persists applications across the applications,
// application_comments and application_evidence tables. The version column
// serializes concurrent reviewer transitions.
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

func (s *PostgresStore) Save(ctx context.Context, app Application) error {
	query := `
		INSERT INTO applications (
			id, applicant_id, document_type, reason, status, organization_id,
			priority, assigned_to, rejection_reason, issued_document_id,
			version, submitted_at, updated_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(app.ID),
		uuid.UUID(app.ApplicantID),
		string(app.Type),
		string(app.Reason),
		string(app.Status),
		uuid.UUID(app.OrganizationID),
		string(app.Priority),
		nullableUUID(uuid.UUID(app.AssignedTo)),
		nullableString(app.RejectionReason),
		nullableUUID(uuid.UUID(app.IssuedDocumentID)),
		app.Version,
		app.SubmittedAt,
		app.UpdatedAt,
		app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	for _, evidence := range app.Evidence {
		if err := s.AppendEvidence(ctx, app.ID, evidence); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, app Application) error {
	query := `
		UPDATE applications
		SET status = $1, priority = $2, assigned_to = $3, rejection_reason = $4,
		    issued_document_id = $5, submitted_at = $6, updated_at = $7, version = $8
		WHERE id = $9 AND version = $10
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(app.Status),
		string(app.Priority),
		nullableUUID(uuid.UUID(app.AssignedTo)),
		nullableString(app.RejectionReason),
		nullableUUID(uuid.UUID(app.IssuedDocumentID)),
		app.SubmittedAt,
		app.UpdatedAt,
		app.Version,
		uuid.UUID(app.ID),
		app.Version-1,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application rows affected: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, app.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, applicationID id.ApplicationID) (Application, error) {
	query := `
		SELECT id, applicant_id, document_type, reason, status, organization_id,
		       priority, assigned_to, rejection_reason, issued_document_id,
		       version, submitted_at, updated_at, created_at
		FROM applications
		WHERE id = $1
	`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, uuid.UUID(applicationID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, sentinel.ErrNotFound
		}
		return Application{}, fmt.Errorf("find application: %w", err)
	}
	if app.Comments, err = s.listComments(ctx, applicationID); err != nil {
		return Application{}, err
	}
	if app.Evidence, err = s.listEvidence(ctx, applicationID); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicantID id.UserID) ([]Application, error) {
	query := `
		SELECT id, applicant_id, document_type, reason, status, organization_id,
		       priority, assigned_to, rejection_reason, issued_document_id,
		       version, submitted_at, updated_at, created_at
		FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC
	`
	return s.queryApplications(ctx, query, uuid.UUID(applicantID))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Application, error) {
	query := `
		SELECT id, applicant_id, document_type, reason, status, organization_id,
		       priority, assigned_to, rejection_reason, issued_document_id,
		       version, submitted_at, updated_at, created_at
		FROM applications
		WHERE status = $1
		ORDER BY created_at
	`
	return s.queryApplications(ctx, query, string(status))
}

func (s *PostgresStore) AppendComment(ctx context.Context, applicationID id.ApplicationID, comment Comment) error {
	query := `
		INSERT INTO application_comments (id, application_id, author_id, author_name, body, internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		comment.ID,
		uuid.UUID(applicationID),
		uuid.UUID(comment.AuthorID),
		comment.AuthorName,
		comment.Body,
		comment.Internal,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendEvidence(ctx context.Context, applicationID id.ApplicationID, evidence Evidence) error {
	query := `
		INSERT INTO application_evidence (id, application_id, name, file_ref, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		evidence.ID,
		uuid.UUID(applicationID),
		evidence.Name,
		evidence.FileRef,
		evidence.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application evidence: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryApplications(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	// Listing endpoints return summaries; comments and evidence are loaded
	// by FindByID only.
	return apps, nil
}

// listComments returns comments in submission order.
func (s *PostgresStore) listComments(ctx context.Context, applicationID id.ApplicationID) ([]Comment, error) {
	query := `
		SELECT id, author_id, author_name, body, internal, created_at
		FROM application_comments
		WHERE application_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(applicationID))
	if err != nil {
		return nil, fmt.Errorf("query application comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var (
			comment  Comment
			authorID uuid.UUID
		)
		if err := rows.Scan(&comment.ID, &authorID, &comment.AuthorName, &comment.Body, &comment.Internal, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan application comment: %w", err)
		}
		comment.AuthorID = id.UserID(authorID)
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application comments: %w", err)
	}
	return comments, nil
}

// listEvidence returns evidence in submission order.
func (s *PostgresStore) listEvidence(ctx context.Context, applicationID id.ApplicationID) ([]Evidence, error) {
	query := `
		SELECT id, name, file_ref, uploaded_at
		FROM application_evidence
		WHERE application_id = $1
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(applicationID))
	if err != nil {
		return nil, fmt.Errorf("query application evidence: %w", err)
	}
	defer rows.Close()

	var evidence []Evidence
	for rows.Next() {
		var item Evidence
		if err := rows.Scan(&item.ID, &item.Name, &item.FileRef, &item.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan application evidence: %w", err)
		}
		evidence = append(evidence, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application evidence: %w", err)
	}
	return evidence, nil
}

func scanApplication(row interface{ Scan(dest ...any) error }) (Application, error) {
	var (
		app              Application
		appID            uuid.UUID
		applicantID      uuid.UUID
		organizationID   uuid.UUID
		docType, reason  string
		status, priority string
		assignedTo       *uuid.UUID
		rejectionReason  sql.NullString
		issuedDocumentID *uuid.UUID
	)
	err := row.Scan(
		&appID, &applicantID, &docType, &reason, &status, &organizationID,
		&priority, &assignedTo, &rejectionReason, &issuedDocumentID,
		&app.Version, &app.SubmittedAt, &app.UpdatedAt, &app.CreatedAt,
	)
	if err != nil {
		return Application{}, err
	}
	app.ID = id.ApplicationID(appID)
	app.ApplicantID = id.UserID(applicantID)
	app.OrganizationID = id.AuthorityID(organizationID)
	app.Type = id.DocumentType(docType)
	app.Reason = id.ApplicationReason(reason)
	app.Status = Status(status)
	app.Priority = id.Priority(priority)
	if assignedTo != nil {
		app.AssignedTo = id.UserID(*assignedTo)
	}
	if rejectionReason.Valid {
		app.RejectionReason = rejectionReason.String
	}
	if issuedDocumentID != nil {
		app.IssuedDocumentID = id.DocumentID(*issuedDocumentID)
	}
	return app, nil
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
