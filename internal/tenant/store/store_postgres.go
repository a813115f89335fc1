package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"refchain/internal/sentinel"
	"refchain/internal/tenant/models"
)

// PostgresStore reads tenant contact data and persists verification state.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed tenant store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, first_name, last_name, email, verification_progress, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email
	`
	_, err := s.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.PersonalInfo.FirstName,
		tenant.PersonalInfo.LastName,
		tenant.PersonalInfo.Email,
		tenant.VerificationProgress,
		tenant.IsVerified,
	)
	if err != nil {
		return fmt.Errorf("save tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	query := `
		SELECT id, first_name, last_name, email, verification_progress, is_verified
		FROM tenants
		WHERE id = $1
	`
	var t models.Tenant
	err := s.db.QueryRowContext(ctx, query, tenantID).Scan(
		&t.ID,
		&t.PersonalInfo.FirstName,
		&t.PersonalInfo.LastName,
		&t.PersonalInfo.Email,
		&t.VerificationProgress,
		&t.IsVerified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) UpdateVerificationState(ctx context.Context, tenantID string, progress int, verified bool) error {
	query := `
		UPDATE tenants
		SET verification_progress = $2, is_verified = $3
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, tenantID, progress, verified)
	if err != nil {
		return fmt.Errorf("update verification state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification state: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
