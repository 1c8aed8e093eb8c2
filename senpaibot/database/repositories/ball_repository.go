package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrNoBalls     = errors.New("no balls of that tier")
	ErrInvalidTier = errors.New("invalid ball tier")
)

type BallRepository interface {
	Quantity(ctx context.Context, userID string, tier int) (int64, error)
	All(ctx context.Context, userID string) (map[int]int64, error)
	Grant(ctx context.Context, userID string, tier int, n int64) error
	ConsumeOne(ctx context.Context, userID string, tier int) error
}

type ballRepository struct {
	db *bun.DB
}

func NewBallRepository(db *bun.DB) BallRepository {
	return &ballRepository{db: db}
}

func (r *ballRepository) Quantity(ctx context.Context, userID string, tier int) (int64, error) {
	if !models.ValidBallTier(tier) {
		return 0, ErrInvalidTier
	}

	stock := new(models.BallStock)
	err := r.db.NewSelect().
		Model(stock).
		Where("user_id = ? AND tier = ?", userID, tier).
		Scan(ctx)
	if err != nil {
		// Missing row means zero stock, not an error.
		return 0, nil
	}
	return stock.Quantity, nil
}

func (r *ballRepository) All(ctx context.Context, userID string) (map[int]int64, error) {
	var stocks []*models.BallStock
	err := r.db.NewSelect().
		Model(&stocks).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get ball stocks: %w", err)
	}

	out := make(map[int]int64, models.BallTierMax)
	for tier := models.BallTierMin; tier <= models.BallTierMax; tier++ {
		out[tier] = 0
	}
	for _, s := range stocks {
		out[s.Tier] = s.Quantity
	}
	return out, nil
}

func (r *ballRepository) Grant(ctx context.Context, userID string, tier int, n int64) error {
	if !models.ValidBallTier(tier) {
		return ErrInvalidTier
	}
	if n <= 0 {
		return nil
	}

	stock := &models.BallStock{
		UserID:    userID,
		Tier:      tier,
		Quantity:  n,
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(stock).
		On("CONFLICT (user_id, tier) DO UPDATE").
		Set("quantity = bs.quantity + EXCLUDED.quantity").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant balls: %w", err)
	}
	return nil
}

// ConsumeOne decrements stock with a guard in the statement itself, so two
// concurrent opens of the last ball cannot both succeed.
func (r *ballRepository) ConsumeOne(ctx context.Context, userID string, tier int) error {
	if !models.ValidBallTier(tier) {
		return ErrInvalidTier
	}

	res, err := r.db.NewUpdate().
		Model((*models.BallStock)(nil)).
		Set("quantity = quantity - 1").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND tier = ? AND quantity >= 1", userID, tier).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to consume ball: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNoBalls
	}
	return nil
}
