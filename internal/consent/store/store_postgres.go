package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"refchain/internal/consent/models"
	"refchain/internal/sentinel"
)

// PostgresStore persists consent records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed consent store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateSuperseding revokes all active consents for the tenant and inserts the
// new record inside a single transaction. The UPDATE and INSERT serialize on
// the tenant's rows, so two concurrent creations cannot both stay active.
func (s *PostgresStore) CreateSuperseding(ctx context.Context, consent *models.Record, now time.Time) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin consent tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE consents
		SET status = $2, revoked_at = $3, revoked_reason = $4
		WHERE tenant_id = $1 AND status = $5
	`, consent.TenantID, string(models.StatusRevoked), now, models.RevokedReasonSuperseded, string(models.StatusActive))
	if err != nil {
		return 0, fmt.Errorf("revoke prior consents: %w", err)
	}
	revoked, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("revoke prior consents: %w", err)
	}

	permissions, err := json.Marshal(consent.Permissions)
	if err != nil {
		return 0, fmt.Errorf("encode permissions: %w", err)
	}
	retention, err := json.Marshal(consent.DataRetention)
	if err != nil {
		return 0, fmt.Errorf("encode retention: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO consents (id, tenant_id, requester_id, permissions, data_retention, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, consent.ID, consent.TenantID, consent.RequesterID, permissions, retention, string(consent.Status), consent.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert consent: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit consent tx: %w", err)
	}
	return int(revoked), nil
}

func (s *PostgresStore) FindActiveByTenant(ctx context.Context, tenantID string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, requester_id, permissions, data_retention, status, created_at, revoked_at, revoked_reason
		FROM consents
		WHERE tenant_id = $1 AND status = $2
	`, tenantID, string(models.StatusActive))

	record, err := scanConsent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find active consent: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, requester_id, permissions, data_retention, status, created_at, revoked_at, revoked_reason
		FROM consents
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list consents: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanConsent(rows)
		if err != nil {
			return nil, fmt.Errorf("list consents: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*models.Record, error) {
	var (
		record        models.Record
		permissions   []byte
		retention     []byte
		status        string
		revokedAt     sql.NullTime
		revokedReason sql.NullString
	)
	err := row.Scan(
		&record.ID,
		&record.TenantID,
		&record.RequesterID,
		&permissions,
		&retention,
		&status,
		&record.CreatedAt,
		&revokedAt,
		&revokedReason,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(permissions, &record.Permissions); err != nil {
		return nil, fmt.Errorf("decode permissions: %w", err)
	}
	if err := json.Unmarshal(retention, &record.DataRetention); err != nil {
		return nil, fmt.Errorf("decode retention: %w", err)
	}
	record.Status = models.Status(status)
	if revokedAt.Valid {
		t := revokedAt.Time
		record.RevokedAt = &t
	}
	record.RevokedReason = revokedReason.String
	return &record, nil
}
