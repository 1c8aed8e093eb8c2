package gacha

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/uptrace/bun"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance for roll")
	ErrNoCandidates        = errors.New("no catalog entries for resolved rarity")
)

// BrickThreshold is the multi-roll size at or above which a run with no
// rarity 6+ outcome counts as a brick.
const BrickThreshold = 50

type Config struct {
	RollCost       int64
	JackpotPerRoll int64
}

// Result is one resolved acquisition.
type Result struct {
	Pokemon    *models.Pokemon
	Rarity     int
	Focus      bool
	NewBalance int64
}

// MultiResult wraps a batch of rolls.
type MultiResult struct {
	Results []Result
	Bricked bool
}

// Engine resolves acquisitions. Each roll is a single transaction: the
// trainer row is locked, the balance debited, pity shifted, the copy inserted
// and the jackpot contribution credited together or not at all.
type Engine struct {
	db       *bun.DB
	pokemons repositories.PokemonRepository
	cfg      Config
	rng      func(n int) int
}

func NewEngine(db *bun.DB, pokemons repositories.PokemonRepository, cfg Config) *Engine {
	return &Engine{
		db:       db,
		pokemons: pokemons,
		cfg:      cfg,
		rng:      rand.Intn,
	}
}

// Roll resolves one acquisition for the trainer, optionally filtered to a
// region. The region filter never applies to the two jackpot tiers' special
// inclusion.
func (e *Engine) Roll(ctx context.Context, userID string, region string) (*Result, error) {
	var result *Result

	err := e.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer := new(models.Trainer)
		err := tx.NewSelect().
			Model(trainer).
			Where("discord_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to lock trainer: %w", err)
		}

		if trainer.Balance < e.cfg.RollCost {
			return ErrInsufficientBalance
		}

		outcome := ResolveOutcome(
			e.rng(FirstDrawRange),
			e.rng(models.PityDrawRange),
			trainer.PityThree, trainer.PityFour, trainer.PityFive,
		)

		pokemon, err := e.pickCandidate(ctx, outcome, region)
		if err != nil {
			return err
		}

		trainer.Balance -= e.cfg.RollCost
		if outcome.Rarity >= 5 {
			trainer.ResetPity()
		} else {
			trainer.ShiftPity()
		}
		trainer.TotalRolls++
		trainer.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to update trainer: %w", err)
		}

		copyRow := &models.PokemonCopy{
			UserID:    userID,
			PokemonID: pokemon.ID,
			Obtained:  time.Now(),
		}
		if _, err := tx.NewInsert().Model(copyRow).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert copy: %w", err)
		}

		contribution := &models.JackpotContribution{
			UserID:    userID,
			Amount:    e.cfg.JackpotPerRoll,
			UpdatedAt: time.Now(),
		}
		_, err = tx.NewInsert().
			Model(contribution).
			On("CONFLICT (user_id) DO UPDATE").
			Set("amount = jc.amount + EXCLUDED.amount").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to credit jackpot: %w", err)
		}

		result = &Result{
			Pokemon:    pokemon,
			Rarity:     outcome.Rarity,
			Focus:      outcome.Focus,
			NewBalance: trainer.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Roll resolved",
		slog.String("type", "gacha"),
		slog.String("user_id", userID),
		slog.Int("rarity", result.Rarity),
		slog.Int64("pokemon_id", result.Pokemon.ID),
		slog.Bool("focus", result.Focus))
	return result, nil
}

// MultiRoll repeats Roll count times. A failed roll mid-batch stops the batch
// and returns what resolved so far alongside the error; completed rolls stand.
func (e *Engine) MultiRoll(ctx context.Context, userID string, count int, region string) (*MultiResult, error) {
	multi := &MultiResult{Results: make([]Result, 0, count)}

	anyHigh := false
	for i := 0; i < count; i++ {
		result, err := e.Roll(ctx, userID, region)
		if err != nil {
			return multi, err
		}
		multi.Results = append(multi.Results, *result)
		if result.Rarity >= models.RarityShiny {
			anyHigh = true
		}
	}

	if count >= BrickThreshold && !anyHigh {
		multi.Bricked = true
		if err := e.recordBrick(ctx, userID); err != nil {
			slog.Error("Failed to record brick",
				slog.String("type", "gacha"),
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}
	return multi, nil
}

// pickCandidate uniformly selects from the resolved pool. Focus pulls come
// from the featured pool when one exists; an empty featured rotation falls
// through to the plain rarity-5 pool, which is the same tier.
func (e *Engine) pickCandidate(ctx context.Context, outcome Outcome, region string) (*models.Pokemon, error) {
	var pool []*models.Pokemon
	var err error

	if outcome.Focus {
		pool, err = e.pokemons.FeaturedByRarity(ctx, outcome.Rarity)
		if err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		pool, err = e.pokemons.RollOptions(ctx, outcome.Rarity, region)
		if err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: rarity %d region %q", ErrNoCandidates, outcome.Rarity, region)
	}
	return pool[e.rng(len(pool))], nil
}

func (e *Engine) recordBrick(ctx context.Context, userID string) error {
	_, err := e.db.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("total_bricks = total_bricks + 1").
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", userID).
		Exec(ctx)
	return err
}
