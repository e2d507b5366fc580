package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/reverio/leadgen/internal/entity"
)

// CreditLedger is the only writer of users.credits. The balance check and
// the decrement are one statement, so two concurrent debits can never take
// the balance below zero.
type CreditLedger struct {
	DB *sqlx.DB
}

func NewCreditLedger(db *sqlx.DB) *CreditLedger {
	return &CreditLedger{DB: db}
}

func (l *CreditLedger) Debit(ctx context.Context, userID string, amount int) error {
	if amount <= 0 {
		return entity.ErrInvalidAmount
	}

	q := conn(ctx, l.DB)
	res, err := q.ExecContext(ctx,
		`UPDATE users SET credits = credits - $2 WHERE id = $1 AND credits >= $2`,
		userID, amount,
	)
	if err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	if !exists {
		return entity.ErrUserNotFound
	}
	return entity.ErrInsufficientCredit
}

func (l *CreditLedger) Credit(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, entity.ErrInvalidAmount
	}

	var balance int
	err := conn(ctx, l.DB).GetContext(ctx, &balance,
		`UPDATE users SET credits = credits + $2 WHERE id = $1 RETURNING credits`,
		userID, amount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit credits: %w", err)
	}
	return balance, nil
}

func (l *CreditLedger) Balance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := conn(ctx, l.DB).GetContext(ctx, &balance, `SELECT credits FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}
