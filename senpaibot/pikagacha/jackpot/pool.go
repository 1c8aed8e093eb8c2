package jackpot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/uptrace/bun"
)

// Pool-size scaling for the ball reward draw caps here; a bigger pool stops
// improving the odds past this point.
const scaleCap = 2000

type Config struct {
	PerRoll   int64
	Threshold int64
}

// Payout is one eligible user's cut.
type Payout struct {
	UserID   string
	Share    int64
	BallTier int
}

type PayoutResult struct {
	Payouts    []Payout
	Total      int64
	Multiplier int64
	Share      int64
}

// Pool manages the shared jackpot. A payout reads every contribution, credits
// the eligible users and clears the whole pool in one transaction, so
// contributions arriving after the payout begins land in the next pool.
type Pool struct {
	db            *bun.DB
	contributions repositories.JackpotRepository
	cfg           Config
	rng           func(n int) int
}

func NewPool(db *bun.DB, contributions repositories.JackpotRepository, cfg Config) *Pool {
	return &Pool{
		db:            db,
		contributions: contributions,
		cfg:           cfg,
		rng:           rand.Intn,
	}
}

func (p *Pool) Contribute(ctx context.Context, userID string, amount int64) error {
	return p.contributions.Contribute(ctx, userID, amount)
}

func (p *Pool) Total(ctx context.Context) (int64, error) {
	return p.contributions.Total(ctx)
}

func (p *Pool) UserContribution(ctx context.Context, userID string) (int64, error) {
	return p.contributions.UserContribution(ctx, userID)
}

func (p *Pool) IsEligible(ctx context.Context, userID string) (bool, error) {
	amount, err := p.contributions.UserContribution(ctx, userID)
	if err != nil {
		return false, err
	}
	return amount >= p.cfg.Threshold, nil
}

// ProcessPayout settles the pool after a jackpot-triggering pull. Eligible
// contributors split the adjusted pool by floor division and each receives one
// ball; every contribution row is cleared afterwards, eligible or not.
func (p *Pool) ProcessPayout(ctx context.Context, triggerRarity int) (*PayoutResult, error) {
	result := &PayoutResult{Multiplier: multiplierFor(triggerRarity)}

	err := p.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var contributions []*models.JackpotContribution
		err := tx.NewSelect().
			Model(&contributions).
			For("UPDATE").
			OrderExpr("user_id ASC").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to read contributions: %w", err)
		}

		for _, c := range contributions {
			result.Total += c.Amount
		}

		var eligible []*models.JackpotContribution
		for _, c := range contributions {
			if c.Amount >= p.cfg.Threshold {
				eligible = append(eligible, c)
			}
		}

		if len(eligible) > 0 {
			adjusted := result.Total * result.Multiplier
			result.Share = adjusted / int64(len(eligible))

			floorTier := 0
			if triggerRarity >= models.RarityLegendary {
				floorTier = models.BallUltra
			}

			for _, c := range eligible {
				tier := drawBallTier(p.rng(100), result.Total, floorTier)
				if err := p.payOne(ctx, tx, c.UserID, result.Share, tier); err != nil {
					return err
				}
				result.Payouts = append(result.Payouts, Payout{
					UserID:   c.UserID,
					Share:    result.Share,
					BallTier: tier,
				})
			}
		}

		_, err = tx.NewDelete().
			Model((*models.JackpotContribution)(nil)).
			Where("TRUE").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear pool: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Jackpot paid out",
		slog.String("type", "gacha"),
		slog.Int("trigger_rarity", triggerRarity),
		slog.Int64("total", result.Total),
		slog.Int64("multiplier", result.Multiplier),
		slog.Int("eligible", len(result.Payouts)))
	return result, nil
}

func (p *Pool) payOne(ctx context.Context, tx bun.Tx, userID string, share int64, tier int) error {
	_, err := tx.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("balance = balance + ?", share).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit payout: %w", err)
	}

	stock := &models.BallStock{
		UserID:    userID,
		Tier:      tier,
		Quantity:  1,
		UpdatedAt: time.Now(),
	}
	_, err = tx.NewInsert().
		Model(stock).
		On("CONFLICT (user_id, tier) DO UPDATE").
		Set("quantity = bs.quantity + 1").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant payout ball: %w", err)
	}
	return nil
}

func multiplierFor(triggerRarity int) int64 {
	if triggerRarity >= models.RarityLegendary {
		return 2
	}
	return 1
}

// ballTierWeights returns the four tier weights for a given pool size. Weight
// shifts from the bottom tier toward the top two as the pool grows, capped at
// scaleCap; the weights always sum to 100 because tier one takes the remainder.
func ballTierWeights(pool int64) [4]int {
	scale := pool
	if scale > scaleCap {
		scale = scaleCap
	}
	if scale < 0 {
		scale = 0
	}

	w4 := 5 + int(15*scale/scaleCap)
	w3 := 15 + int(25*scale/scaleCap)
	w2 := 30
	w1 := 100 - w2 - w3 - w4
	return [4]int{w1, w2, w3, w4}
}

// drawBallTier resolves a ball tier from a uniform roll in [0, 100), applying
// the floor guarantee for top-rarity triggers.
func drawBallTier(roll int, pool int64, floorTier int) int {
	weights := ballTierWeights(pool)

	tier := models.BallMaster
	threshold := 0
	for i, w := range weights {
		threshold += w
		if roll < threshold {
			tier = models.BallTierMin + i
			break
		}
	}

	if tier < floorTier {
		tier = floorTier
	}
	return tier
}
