package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"refchain/internal/reference/models"
	"refchain/internal/sentinel"
)

// PostgresStore persists reference requests in PostgreSQL. Variant payloads
// (provider, attempts, verification details) are stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed reference store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const referenceColumns = `
	id, tenant_id, reference_type, provider, token, status,
	expires_at, created_at, attempts, reminder_count, last_reminder_sent,
	details, rating, feedback, completed_at,
	decline_reason, decline_comment, declined_at
`

func (s *PostgresStore) Create(ctx context.Context, record *models.Record) error {
	provider, attempts, details, err := encodeVariants(record)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reference_requests (
			id, tenant_id, reference_type, provider, token, status,
			expires_at, created_at, attempts, reminder_count, last_reminder_sent,
			details, rating, feedback, completed_at,
			decline_reason, decline_comment, declined_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		record.ID, record.TenantID, string(record.Type), provider, record.Token, string(record.Status),
		record.ExpiresAt, record.CreatedAt, attempts, record.ReminderCount, record.LastReminderSent,
		details, nullInt(record.Rating), record.Feedback, record.CompletedAt,
		nullString(string(record.DeclineReason)), record.DeclineComment, record.DeclinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reference request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_requests
		WHERE id = $1
	`, id)
	return s.scanOne(row, "find reference request")
}

// FindActionableByToken applies the compound guard in SQL so wrong token,
// resolved record, and expired record are indistinguishable to the caller.
func (s *PostgresStore) FindActionableByToken(ctx context.Context, token string, now time.Time) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_requests
		WHERE token = $1 AND status = $2 AND expires_at > $3
	`, token, string(models.StatusPending), now)
	return s.scanOne(row, "find reference by token")
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string) ([]*models.Record, error) {
	return s.list(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_requests
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
}

func (s *PostgresStore) ListCompletedByTenant(ctx context.Context, tenantID string) ([]*models.Record, error) {
	return s.list(ctx, `
		SELECT `+referenceColumns+`
		FROM reference_requests
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at
	`, tenantID, string(models.StatusCompleted))
}

func (s *PostgresStore) Update(ctx context.Context, record *models.Record) error {
	attempts, err := json.Marshal(record.Attempts)
	if err != nil {
		return fmt.Errorf("encode attempts: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE reference_requests
		SET attempts = $2, reminder_count = $3, last_reminder_sent = $4
		WHERE id = $1
	`, record.ID, attempts, record.ReminderCount, record.LastReminderSent)
	if err != nil {
		return fmt.Errorf("update reference request: %w", err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) UpdateAttemptDelivery(ctx context.Context, id string, attemptNumber int, status models.DeliveryStatus, details string) error {
	record, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	found := false
	for i := range record.Attempts {
		if record.Attempts[i].Number == attemptNumber {
			record.Attempts[i].DeliveryStatus = status
			record.Attempts[i].DeliveryDetails = details
			found = true
			break
		}
	}
	if !found {
		return sentinel.ErrNotFound
	}
	attempts, err := json.Marshal(record.Attempts)
	if err != nil {
		return fmt.Errorf("encode attempts: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE reference_requests
		SET attempts = $2
		WHERE id = $1
	`, id, attempts)
	if err != nil {
		return fmt.Errorf("update attempt delivery: %w", err)
	}
	return checkAffected(res)
}

// MarkCompleted is a single conditional UPDATE: the transition happens only
// if the row is still pending and unexpired, closing the double-resolve race.
func (s *PostgresStore) MarkCompleted(ctx context.Context, token string, now time.Time, rating int, feedback string, details *models.Details) (*models.Record, error) {
	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE reference_requests
		SET status = $2, rating = $3, feedback = $4, details = $5, completed_at = $6
		WHERE token = $1 AND status = $7 AND expires_at > $6
		RETURNING `+referenceColumns+`
	`, token, string(models.StatusCompleted), rating, feedback, encoded, now, string(models.StatusPending))
	return s.scanOne(row, "complete reference request")
}

// MarkDeclined mirrors MarkCompleted for the declined terminal state.
func (s *PostgresStore) MarkDeclined(ctx context.Context, token string, now time.Time, reason models.DeclineReason, comment string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE reference_requests
		SET status = $2, decline_reason = $3, decline_comment = $4, declined_at = $5
		WHERE token = $1 AND status = $6 AND expires_at > $5
		RETURNING `+referenceColumns+`
	`, token, string(models.StatusDeclined), string(reason), comment, now, string(models.StatusPending))
	return s.scanOne(row, "decline reference request")
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reference requests: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanReference(rows)
		if err != nil {
			return nil, fmt.Errorf("list reference requests: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) scanOne(row *sql.Row, op string) (*models.Record, error) {
	record, err := scanReference(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReference(row rowScanner) (*models.Record, error) {
	var (
		record         models.Record
		refType        string
		provider       []byte
		status         string
		attempts       []byte
		lastReminder   sql.NullTime
		details        []byte
		rating         sql.NullInt64
		completedAt    sql.NullTime
		declineReason  sql.NullString
		declineComment sql.NullString
		declinedAt     sql.NullTime
	)
	err := row.Scan(
		&record.ID, &record.TenantID, &refType, &provider, &record.Token, &status,
		&record.ExpiresAt, &record.CreatedAt, &attempts, &record.ReminderCount, &lastReminder,
		&details, &rating, &record.Feedback, &completedAt,
		&declineReason, &declineComment, &declinedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Type = models.Type(refType)
	record.Status = models.Status(status)
	if err := json.Unmarshal(provider, &record.Provider); err != nil {
		return nil, fmt.Errorf("decode provider: %w", err)
	}
	if len(attempts) > 0 {
		if err := json.Unmarshal(attempts, &record.Attempts); err != nil {
			return nil, fmt.Errorf("decode attempts: %w", err)
		}
	}
	if len(details) > 0 && string(details) != "null" {
		record.Details = &models.Details{}
		if err := json.Unmarshal(details, record.Details); err != nil {
			return nil, fmt.Errorf("decode details: %w", err)
		}
	}
	if lastReminder.Valid {
		t := lastReminder.Time
		record.LastReminderSent = &t
	}
	if rating.Valid {
		record.Rating = int(rating.Int64)
	}
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	record.DeclineReason = models.DeclineReason(declineReason.String)
	record.DeclineComment = declineComment.String
	if declinedAt.Valid {
		t := declinedAt.Time
		record.DeclinedAt = &t
	}
	return &record, nil
}

func encodeVariants(record *models.Record) (provider, attempts, details []byte, err error) {
	if provider, err = json.Marshal(record.Provider); err != nil {
		return nil, nil, nil, fmt.Errorf("encode provider: %w", err)
	}
	if attempts, err = json.Marshal(record.Attempts); err != nil {
		return nil, nil, nil, fmt.Errorf("encode attempts: %w", err)
	}
	if record.Details != nil {
		if details, err = json.Marshal(record.Details); err != nil {
			return nil, nil, nil, fmt.Errorf("encode details: %w", err)
		}
	}
	return provider, attempts, details, nil
}

func checkAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
