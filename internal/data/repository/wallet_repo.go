package repository

import (
	"context"
	"fmt"
	"time"

	"restaurant-booking/internal/booking"
	"restaurant-booking/internal/data/entity"
	"restaurant-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// WalletRepository is the ledger store: the only component allowed to mutate
// wallet balances, and every mutation appends exactly one transaction row in
// the same database transaction.
type WalletRepository interface {
	Balance(ctx context.Context, userID uuid.UUID) (float64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) error
	Debit(ctx context.Context, userID uuid.UUID, amount float64, description string) error
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error)
	CountTransactions(ctx context.Context, userID uuid.UUID) (int64, error)
}

type walletRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWalletRepository(db database.PgxIface, log *zap.Logger) WalletRepository {
	return &walletRepository{
		db:  db,
		log: log.With(zap.String("repository", "wallet")),
	}
}

func (r *walletRepository) Balance(ctx context.Context, userID uuid.UUID) (float64, error) {
	query := `SELECT balance FROM wallets WHERE user_id = $1`

	var balance float64
	err := r.db.QueryRow(ctx, query, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("wallet for user %s: %w", userID.String(), booking.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to read wallet balance",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("read wallet balance for user %s: %w", userID.String(), err)
	}

	return balance, nil
}

// appendTransaction writes the ledger entry inside the caller's tx.
func appendTransaction(ctx context.Context, tx pgx.Tx, userID uuid.UUID, kind entity.TransactionType, amount float64, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(), userID, kind, amount, description, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("append %s transaction for user %s: %w", kind, userID.String(), err)
	}
	return nil
}

func (r *walletRepository) Credit(ctx context.Context, userID uuid.UUID, amount float64, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := creditLocked(ctx, tx, userID, amount, description); err != nil {
		r.log.Error("Failed to credit wallet",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Float64("amount", amount),
		)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit credit for user %s: %w", userID.String(), err)
	}

	r.log.Info("Wallet credited",
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
		zap.String("description", description),
	)
	return nil
}

func (r *walletRepository) Debit(ctx context.Context, userID uuid.UUID, amount float64, description string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := debitLocked(ctx, tx, userID, amount, description); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit debit for user %s: %w", userID.String(), err)
	}

	r.log.Info("Wallet debited",
		zap.String("user_id", userID.String()),
		zap.Float64("amount", amount),
		zap.String("description", description),
	)
	return nil
}

// debitLocked runs the funds check and debit inside the caller's tx. The row
// lock guarantees the balance read is at least as current as any committed
// mutation. A failed funds check leaves both tables untouched.
func debitLocked(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount float64, description string) error {
	var balance float64
	err := tx.QueryRow(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&balance)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("wallet for user %s: %w", userID.String(), booking.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock wallet for user %s: %w", userID.String(), err)
	}

	if balance < amount {
		return fmt.Errorf("balance %.2f, need %.2f: %w", balance, amount, booking.ErrInsufficientFunds)
	}

	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balance = balance - $2, updated_at = NOW() WHERE user_id = $1`,
		userID, amount,
	)
	if err != nil {
		return fmt.Errorf("debit wallet for user %s: %w", userID.String(), err)
	}

	return appendTransaction(ctx, tx, userID, entity.TransactionTypeDebit, amount, description)
}

// creditLocked credits a wallet inside the caller's tx (refund path). The
// upsert bootstraps the row for users who never topped up, and stays
// race-free when two refunds for the same user land together.
func creditLocked(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount float64, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallets (user_id, balance, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = NOW()
	`, userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet for user %s: %w", userID.String(), err)
	}

	return appendTransaction(ctx, tx, userID, entity.TransactionTypeCredit, amount, description)
}

func (r *walletRepository) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to read transaction history",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("read transaction history for user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var transactions []*entity.Transaction
	for rows.Next() {
		var transaction entity.Transaction
		err := rows.Scan(
			&transaction.ID,
			&transaction.UserID,
			&transaction.Type,
			&transaction.Amount,
			&transaction.Description,
			&transaction.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	return transactions, nil
}

func (r *walletRepository) CountTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count transactions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count transactions for user %s: %w", userID.String(), err)
	}

	return count, nil
}
