package balls

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

// OpenResult is the yield of one opened ball: either points or an entry,
// never both.
type OpenResult struct {
	Tier    int
	Points  int64
	Pokemon *models.Pokemon
	Rarity  int
	Exp     int64
}

// Opener resolves the ball-opening lottery. The stock decrement happens first
// in its own guarded statement, so a failure during resolution can lose a
// ball's yield but can never duplicate the ball.
type Opener struct {
	db       *bun.DB
	balls    repositories.BallRepository
	pokemons repositories.PokemonRepository
	rng      func(n int) int
}

func NewOpener(db *bun.DB, balls repositories.BallRepository, pokemons repositories.PokemonRepository) *Opener {
	return &Opener{
		db:       db,
		balls:    balls,
		pokemons: pokemons,
		rng:      rand.Intn,
	}
}

// Open consumes one ball of the tier and resolves its yield.
func (o *Opener) Open(ctx context.Context, userID string, tier int) (*OpenResult, error) {
	table, ok := TableFor(tier)
	if !ok {
		return nil, repositories.ErrInvalidTier
	}

	if err := o.balls.ConsumeOne(ctx, userID, tier); err != nil {
		return nil, err
	}

	result := &OpenResult{Tier: tier}

	if o.rng(2) == 0 {
		span := int(table.PointsMax - table.PointsMin + 1)
		result.Points = table.drawPoints(int64(o.rng(span)))
		if err := o.creditPoints(ctx, userID, result.Points); err != nil {
			return nil, err
		}
	} else {
		rarity := table.drawRarity(o.rng(100))
		pool, err := o.pokemons.RollOptions(ctx, rarity, "")
		if err != nil {
			return nil, err
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("no catalog entries for ball rarity %d", rarity)
		}
		result.Pokemon = pool[o.rng(len(pool))]
		result.Rarity = rarity
		result.Exp = OpenExp
		if err := o.grantEntry(ctx, userID, result.Pokemon.ID); err != nil {
			return nil, err
		}
	}

	slog.Info("Ball opened",
		slog.String("type", "gacha"),
		slog.String("user_id", userID),
		slog.String("ball", models.BallName(tier)),
		slog.Int64("points", result.Points),
		slog.Int("rarity", result.Rarity))
	return result, nil
}

// OpenAll opens every owned ball of the tier. It stops on the first error and
// returns the yields resolved so far.
func (o *Opener) OpenAll(ctx context.Context, userID string, tier int) ([]*OpenResult, error) {
	quantity, err := o.balls.Quantity(ctx, userID, tier)
	if err != nil {
		return nil, err
	}

	results := make([]*OpenResult, 0, quantity)
	for i := int64(0); i < quantity; i++ {
		result, err := o.Open(ctx, userID, tier)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (o *Opener) creditPoints(ctx context.Context, userID string, points int64) error {
	_, err := o.db.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("balance = balance + ?", points).
		Set("balls_opened = balls_opened + 1").
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit ball points: %w", err)
	}
	return nil
}

func (o *Opener) grantEntry(ctx context.Context, userID string, pokemonID int64) error {
	return o.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		copyRow := &models.PokemonCopy{
			UserID:    userID,
			PokemonID: pokemonID,
			Obtained:  time.Now(),
		}
		if _, err := tx.NewInsert().Model(copyRow).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert ball copy: %w", err)
		}

		_, err := tx.NewUpdate().
			Model((*models.Trainer)(nil)).
			Set("rank_exp = rank_exp + ?", OpenExp).
			Set("total_exp = total_exp + ?", OpenExp).
			Set("balls_opened = balls_opened + 1").
			Set("updated_at = ?", time.Now()).
			Where("discord_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to grant ball exp: %w", err)
		}
		return nil
	})
}
