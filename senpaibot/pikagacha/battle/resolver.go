package battle

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

var ErrSelfBattle = errors.New("cannot battle yourself")

const (
	// DuplicateBonus is added to base power per owned copy beyond the first.
	DuplicateBonus = 5

	winExpMin  = 50
	winExpMax  = 100
	lossExpMin = 10
	lossExpMax = 30
)

// Side is one participant's resolved stats.
type Side struct {
	UserID     string
	Pokemon    *models.Pokemon
	Copies     int64
	FinalPower int
}

// Outcome is a settled battle. On a tie Winner and Loser are empty and both
// sides earn the loser's experience range.
type Outcome struct {
	A      Side
	B      Side
	Winner string
	Loser  string
	Tied   bool
	ExpA   int64
	ExpB   int64
}

// Preview carries the same power math plus a display probability split,
// without touching any state.
type Preview struct {
	A       Side
	B       Side
	ChanceA float64
	ChanceB float64
}

type Resolver struct {
	db         *bun.DB
	pokemons   repositories.PokemonRepository
	collection repositories.CollectionRepository
	rng        func(n int) int
}

func NewResolver(db *bun.DB, pokemons repositories.PokemonRepository, collection repositories.CollectionRepository) *Resolver {
	return &Resolver{
		db:         db,
		pokemons:   pokemons,
		collection: collection,
		rng:        rand.Intn,
	}
}

// FinalPower is the duplicate-adjusted battle power.
func FinalPower(basePower int64, copies int64) int {
	extra := copies - 1
	if extra < 0 {
		extra = 0
	}
	return int(basePower) + int(extra)*DuplicateBonus
}

func (r *Resolver) loadSide(ctx context.Context, userID string, pokemonID int64) (Side, error) {
	pokemon, err := r.pokemons.GetByID(ctx, pokemonID)
	if err != nil {
		return Side{}, err
	}

	copies, err := r.collection.Count(ctx, userID, pokemonID)
	if err != nil {
		return Side{}, err
	}
	if copies < 1 {
		return Side{}, repositories.ErrNotOwned
	}

	return Side{
		UserID:     userID,
		Pokemon:    pokemon,
		Copies:     copies,
		FinalPower: FinalPower(pokemon.Power, copies),
	}, nil
}

// Preview computes both powers and the probability split without mutating
// anything. Callers layer wagers on top; the resolver is wager-agnostic.
func (r *Resolver) Preview(ctx context.Context, userA string, entryA int64, userB string, entryB int64) (*Preview, error) {
	if userA == userB {
		return nil, ErrSelfBattle
	}

	a, err := r.loadSide(ctx, userA, entryA)
	if err != nil {
		return nil, err
	}
	b, err := r.loadSide(ctx, userB, entryB)
	if err != nil {
		return nil, err
	}

	total := float64(a.FinalPower + b.FinalPower)
	preview := &Preview{A: a, B: b, ChanceA: 0.5, ChanceB: 0.5}
	if total > 0 {
		preview.ChanceA = float64(a.FinalPower) / total
		preview.ChanceB = float64(b.FinalPower) / total
	}
	return preview, nil
}

// Resolve settles a battle. The higher duplicate-adjusted power wins outright;
// equal powers tie. Win/loss counters move only on decisive outcomes.
func (r *Resolver) Resolve(ctx context.Context, userA string, entryA int64, userB string, entryB int64) (*Outcome, error) {
	if userA == userB {
		return nil, ErrSelfBattle
	}

	a, err := r.loadSide(ctx, userA, entryA)
	if err != nil {
		return nil, err
	}
	b, err := r.loadSide(ctx, userB, entryB)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{A: a, B: b}
	switch {
	case a.FinalPower > b.FinalPower:
		outcome.Winner = userA
		outcome.Loser = userB
		outcome.ExpA = r.drawExp(winExpMin, winExpMax)
		outcome.ExpB = r.drawExp(lossExpMin, lossExpMax)
	case b.FinalPower > a.FinalPower:
		outcome.Winner = userB
		outcome.Loser = userA
		outcome.ExpA = r.drawExp(lossExpMin, lossExpMax)
		outcome.ExpB = r.drawExp(winExpMin, winExpMax)
	default:
		outcome.Tied = true
		outcome.ExpA = r.drawExp(lossExpMin, lossExpMax)
		outcome.ExpB = r.drawExp(lossExpMin, lossExpMax)
	}

	if err := r.settle(ctx, outcome); err != nil {
		return nil, err
	}

	slog.Info("Battle resolved",
		slog.String("type", "gacha"),
		slog.String("user_a", userA),
		slog.String("user_b", userB),
		slog.Int("power_a", a.FinalPower),
		slog.Int("power_b", b.FinalPower),
		slog.Bool("tied", outcome.Tied))
	return outcome, nil
}

func (r *Resolver) drawExp(min, max int) int64 {
	return int64(min + r.rng(max-min+1))
}

// settle applies exp and counters for both sides in one transaction. Rows are
// locked in ascending user-id order so concurrent battles cannot deadlock.
func (r *Resolver) settle(ctx context.Context, outcome *Outcome) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		first, second := outcome.A.UserID, outcome.B.UserID
		if second < first {
			first, second = second, first
		}
		for _, id := range []string{first, second} {
			var trainer models.Trainer
			err := tx.NewSelect().
				Model(&trainer).
				Where("discord_id = ?", id).
				For("UPDATE").
				Scan(ctx)
			if err != nil {
				return fmt.Errorf("failed to lock trainer %s: %w", id, err)
			}
		}

		// Ownership can change between loadSide and here; recheck under the
		// locks so a released copy cannot still settle.
		for _, side := range []Side{outcome.A, outcome.B} {
			owned, err := tx.NewSelect().
				Model((*models.PokemonCopy)(nil)).
				Where("user_id = ? AND pokemon_id = ?", side.UserID, side.Pokemon.ID).
				Count(ctx)
			if err != nil {
				return fmt.Errorf("failed to recheck copies: %w", err)
			}
			if owned < 1 {
				return repositories.ErrNotOwned
			}
		}

		if err := r.settleSide(ctx, tx, outcome.A.UserID, outcome.ExpA, outcome); err != nil {
			return err
		}
		return r.settleSide(ctx, tx, outcome.B.UserID, outcome.ExpB, outcome)
	})
}

func (r *Resolver) settleSide(ctx context.Context, tx bun.Tx, userID string, exp int64, outcome *Outcome) error {
	q := tx.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("rank_exp = rank_exp + ?", exp).
		Set("total_exp = total_exp + ?", exp).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", userID)

	if !outcome.Tied {
		if userID == outcome.Winner {
			q = q.Set("battles_won = battles_won + 1")
		} else {
			q = q.Set("battles_lost = battles_lost + 1")
		}
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to settle battle for %s: %w", userID, err)
	}
	return nil
}
