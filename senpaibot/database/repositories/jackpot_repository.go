package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

type JackpotRepository interface {
	Contribute(ctx context.Context, userID string, amount int64) error
	Total(ctx context.Context) (int64, error)
	UserContribution(ctx context.Context, userID string) (int64, error)
}

type jackpotRepository struct {
	db *bun.DB
}

func NewJackpotRepository(db *bun.DB) JackpotRepository {
	return &jackpotRepository{db: db}
}

func (r *jackpotRepository) Contribute(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	contribution := &models.JackpotContribution{
		UserID:    userID,
		Amount:    amount,
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(contribution).
		On("CONFLICT (user_id) DO UPDATE").
		Set("amount = jc.amount + EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to contribute to jackpot: %w", err)
	}
	return nil
}

func (r *jackpotRepository) Total(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.NewSelect().
		Model((*models.JackpotContribution)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum jackpot pool: %w", err)
	}
	return total, nil
}

func (r *jackpotRepository) UserContribution(ctx context.Context, userID string) (int64, error) {
	var amount int64
	err := r.db.NewSelect().
		Model((*models.JackpotContribution)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &amount)
	if err != nil {
		return 0, fmt.Errorf("failed to get jackpot contribution: %w", err)
	}
	return amount, nil
}
