package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS payment_attempts (
	idempotency_key TEXT PRIMARY KEY,
	booking_id      TEXT NOT NULL,
	method          TEXT NOT NULL,
	amount          NUMERIC(12, 2) NOT NULL,
	currency        TEXT NOT NULL,
	payment_id      TEXT NOT NULL DEFAULT '',
	transaction_id  TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS payment_attempts_open_idx
	ON payment_attempts (status) WHERE status IN ('started', 'initiated')`,
}

// PostgresJournal stores attempts in PostgreSQL
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// NewPostgresJournal creates a journal on an existing pool
func NewPostgresJournal(pool *pgxpool.Pool) *PostgresJournal {
	return &PostgresJournal{pool: pool}
}

// Migrate creates the payment_attempts table if needed
func (j *PostgresJournal) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := j.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate payment journal: %w", err)
		}
	}
	return nil
}

const selectColumns = `
	idempotency_key, booking_id, method, amount::float8, currency, payment_id,
	transaction_id, status, message, created_at, updated_at
`

func scanAttempt(row pgx.Row) (*Attempt, error) {
	var a Attempt
	err := row.Scan(
		&a.Key, &a.BookingID, &a.Method, &a.Amount, &a.Currency, &a.PaymentID,
		&a.TransactionID, &a.Status, &a.Message, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (j *PostgresJournal) Get(ctx context.Context, key string) (*Attempt, error) {
	row := j.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM payment_attempts WHERE idempotency_key = $1`, key)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}
	return a, nil
}

func (j *PostgresJournal) Create(ctx context.Context, a *Attempt) error {
	err := j.pool.QueryRow(ctx, `
		INSERT INTO payment_attempts
			(idempotency_key, booking_id, method, amount, currency, payment_id, transaction_id, status, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING created_at, updated_at
	`, a.Key, a.BookingID, a.Method, a.Amount, a.Currency, a.PaymentID, a.TransactionID, a.Status, a.Message,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Update(ctx context.Context, a *Attempt) error {
	err := j.pool.QueryRow(ctx, `
		UPDATE payment_attempts
		SET payment_id = $2, transaction_id = $3, status = $4, message = $5, updated_at = NOW()
		WHERE idempotency_key = $1
		RETURNING created_at, updated_at
	`, a.Key, a.PaymentID, a.TransactionID, a.Status, a.Message,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update payment attempt: %w", err)
	}
	return nil
}

func (j *PostgresJournal) ListOpen(ctx context.Context) ([]*Attempt, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM payment_attempts
		WHERE status IN ('started', 'initiated')
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open payment attempts: %w", err)
	}
	defer rows.Close()

	var open []*Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment attempt: %w", err)
		}
		open = append(open, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payment attempts: %w", err)
	}
	return open, nil
}
