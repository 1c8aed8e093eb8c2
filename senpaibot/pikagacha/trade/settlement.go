package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/uptrace/bun"
)

var (
	ErrSelfTrade      = errors.New("cannot trade with yourself")
	ErrRarityMismatch = errors.New("entries must share a rarity tier")
	ErrBalanceFloor   = errors.New("trade would push balance below the floor")
)

type Config struct {
	RatePerTier int64
	MinBalance  int64
}

// Quote is a validated trade's cost. The cost is charged to both parties and
// sunk, not transferred.
type Quote struct {
	Rarity int
	Cost   int64
}

// Settlement validates and executes two-party swaps. Execution re-validates
// everything inside one transaction with both trainer rows locked in
// ascending user-id order.
type Settlement struct {
	db       *bun.DB
	pokemons repositories.PokemonRepository
	cfg      Config

	// afterMove, when set, runs between the copy moves and the debits. Tests
	// use it to force mid-transaction failures.
	afterMove func(ctx context.Context, tx bun.Tx) error
}

func NewSettlement(db *bun.DB, pokemons repositories.PokemonRepository, cfg Config) *Settlement {
	return &Settlement{db: db, pokemons: pokemons, cfg: cfg}
}

// Validate checks a proposed trade without mutating state and returns its
// cost. The same checks run again inside Execute's transaction.
func (s *Settlement) Validate(ctx context.Context, userA string, entryA int64, userB string, entryB int64) (*Quote, error) {
	if userA == userB {
		return nil, ErrSelfTrade
	}

	pokemonA, err := s.pokemons.GetByID(ctx, entryA)
	if err != nil {
		return nil, err
	}
	pokemonB, err := s.pokemons.GetByID(ctx, entryB)
	if err != nil {
		return nil, err
	}
	if pokemonA.Rarity != pokemonB.Rarity {
		return nil, ErrRarityMismatch
	}

	quote := &Quote{
		Rarity: pokemonA.Rarity,
		Cost:   s.cfg.RatePerTier * int64(pokemonA.Rarity),
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.checkParties(ctx, tx, userA, entryA, userB, entryB, quote.Cost, false)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// Execute performs the full swap atomically: both balances debited, each
// offered copy moved across, both trade counters bumped. Any failure rolls
// the whole trade back.
func (s *Settlement) Execute(ctx context.Context, userA string, entryA int64, userB string, entryB int64) (*Quote, error) {
	quote, err := s.quoteFor(ctx, entryA, entryB)
	if err != nil {
		return nil, err
	}
	if userA == userB {
		return nil, ErrSelfTrade
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := s.checkParties(ctx, tx, userA, entryA, userB, entryB, quote.Cost, true); err != nil {
			return err
		}

		if err := s.moveCopy(ctx, tx, userA, entryA, userB); err != nil {
			return err
		}
		if err := s.moveCopy(ctx, tx, userB, entryB, userA); err != nil {
			return err
		}

		if s.afterMove != nil {
			if err := s.afterMove(ctx, tx); err != nil {
				return err
			}
		}

		for _, id := range []string{userA, userB} {
			_, err := tx.NewUpdate().
				Model((*models.Trainer)(nil)).
				Set("balance = balance - ?", quote.Cost).
				Set("total_trades = total_trades + 1").
				Set("updated_at = ?", time.Now()).
				Where("discord_id = ?", id).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to debit trade cost: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Trade settled",
		slog.String("type", "gacha"),
		slog.String("user_a", userA),
		slog.String("user_b", userB),
		slog.Int64("entry_a", entryA),
		slog.Int64("entry_b", entryB),
		slog.Int64("cost", quote.Cost))
	return quote, nil
}

func (s *Settlement) quoteFor(ctx context.Context, entryA, entryB int64) (*Quote, error) {
	pokemonA, err := s.pokemons.GetByID(ctx, entryA)
	if err != nil {
		return nil, err
	}
	pokemonB, err := s.pokemons.GetByID(ctx, entryB)
	if err != nil {
		return nil, err
	}
	if pokemonA.Rarity != pokemonB.Rarity {
		return nil, ErrRarityMismatch
	}
	return &Quote{
		Rarity: pokemonA.Rarity,
		Cost:   s.cfg.RatePerTier * int64(pokemonA.Rarity),
	}, nil
}

// checkParties locks both trainers in ascending id order (when locking) and
// verifies balance headroom and ownership of the offered entries.
func (s *Settlement) checkParties(ctx context.Context, tx bun.Tx, userA string, entryA int64, userB string, entryB int64, cost int64, lock bool) error {
	type party struct {
		userID string
		entry  int64
	}
	parties := []party{{userA, entryA}, {userB, entryB}}
	if parties[1].userID < parties[0].userID {
		parties[0], parties[1] = parties[1], parties[0]
	}

	for _, p := range parties {
		trainer := new(models.Trainer)
		q := tx.NewSelect().Model(trainer).Where("discord_id = ?", p.userID)
		if lock {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			return fmt.Errorf("failed to load trainer %s: %w", p.userID, err)
		}

		if trainer.Balance-cost < s.cfg.MinBalance {
			return ErrBalanceFloor
		}

		owned, err := tx.NewSelect().
			Model((*models.PokemonCopy)(nil)).
			Where("user_id = ? AND pokemon_id = ?", p.userID, p.entry).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count copies: %w", err)
		}
		if owned < 1 {
			return repositories.ErrNotOwned
		}
	}
	return nil
}

// moveCopy reassigns one copy of the entry from one trainer to the other.
func (s *Settlement) moveCopy(ctx context.Context, tx bun.Tx, fromUser string, entry int64, toUser string) error {
	res, err := tx.NewUpdate().
		Model((*models.PokemonCopy)(nil)).
		Set("user_id = ?", toUser).
		Set("obtained = ?", time.Now()).
		Where("id = (SELECT id FROM trainer_pokemons WHERE user_id = ? AND pokemon_id = ? ORDER BY id LIMIT 1)",
			fromUser, entry).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to move copy: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return repositories.ErrNotOwned
	}
	return nil
}
