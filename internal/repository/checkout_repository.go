package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// checkoutRepository implements CheckoutRepository using PostgreSQL.
type checkoutRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCheckoutRepository creates a new PostgreSQL-backed checkout journal.
func NewCheckoutRepository(pool *pgxpool.Pool, logger zerolog.Logger) CheckoutRepository {
	return &checkoutRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "checkout").Logger(),
	}
}

// RecordAttempt inserts a new checkout attempt.
func (r *checkoutRepository) RecordAttempt(ctx context.Context, attempt *CheckoutAttempt) error {
	query := `
		INSERT INTO checkout_attempts
			(id, user_id, offer_id, quantity, order_id, amount_minor, voucher_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.OfferID,
		attempt.Quantity,
		attempt.OrderID,
		attempt.AmountMinor,
		attempt.VoucherCode,
		attempt.Status,
		attempt.CreatedAt,
		attempt.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", attempt.OrderID).
			Str("user_id", attempt.UserID).
			Msg("failed to record checkout attempt")
		return fmt.Errorf("failed to record checkout attempt: %w", err)
	}

	r.logger.Debug().
		Str("order_id", attempt.OrderID).
		Str("status", attempt.Status).
		Msg("checkout attempt recorded")

	return nil
}

// UpdateStatus transitions the attempt for the given upstream order id.
func (r *checkoutRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	query := `
		UPDATE checkout_attempts
		SET status = $2, updated_at = $3
		WHERE order_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, orderID, status, time.Now())
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID).
			Str("status", status).
			Msg("failed to update checkout attempt status")
		return fmt.Errorf("failed to update checkout attempt status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no checkout attempt found for order %s", orderID)
	}

	r.logger.Debug().
		Str("order_id", orderID).
		Str("status", status).
		Msg("checkout attempt status updated")

	return nil
}

// GetByOrderID retrieves the attempt for the given upstream order id.
func (r *checkoutRepository) GetByOrderID(ctx context.Context, orderID string) (*CheckoutAttempt, error) {
	query := `
		SELECT id, user_id, offer_id, quantity, order_id, amount_minor, voucher_code, status, created_at, updated_at
		FROM checkout_attempts
		WHERE order_id = $1
	`

	var attempt CheckoutAttempt
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.OfferID,
		&attempt.Quantity,
		&attempt.OrderID,
		&attempt.AmountMinor,
		&attempt.VoucherCode,
		&attempt.Status,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to get checkout attempt")
		return nil, fmt.Errorf("failed to get checkout attempt: %w", err)
	}

	return &attempt, nil
}
