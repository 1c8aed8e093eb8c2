package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/testdb"
	"github.com/uptrace/bun"
)

func TestSettlement_Integration(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	seed := func(t *testing.T, balanceA, balanceB int64) (*Settlement, repositories.TrainerRepository, repositories.CollectionRepository) {
		t.Helper()
		testdb.Reset(t, db)

		pokemons := repositories.NewPokemonRepository(db.BunDB())
		trainers := repositories.NewTrainerRepository(db.BunDB())
		collection := repositories.NewCollectionRepository(db.BunDB())

		if _, err := pokemons.BulkUpsert(ctx, []*models.Pokemon{
			{ID: 1, Name: "bulbasaur", Rarity: 3, Power: 100, Active: true},
			{ID: 4, Name: "charmander", Rarity: 3, Power: 90, Active: true},
		}); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}

		for _, tr := range []*models.Trainer{
			{DiscordID: "alice", DisplayName: "alice", Balance: balanceA},
			{DiscordID: "bob", DisplayName: "bob", Balance: balanceB},
		} {
			if err := trainers.Create(ctx, tr); err != nil {
				t.Fatalf("failed to seed trainer %s: %v", tr.DiscordID, err)
			}
		}
		if err := collection.Add(ctx, "alice", 1); err != nil {
			t.Fatalf("failed to seed copy: %v", err)
		}
		if err := collection.Add(ctx, "bob", 4); err != nil {
			t.Fatalf("failed to seed copy: %v", err)
		}

		s := NewSettlement(db.BunDB(), pokemons, Config{RatePerTier: 60, MinBalance: -100})
		return s, trainers, collection
	}

	ownedCount := func(t *testing.T, collection repositories.CollectionRepository, userID string, pokemonID int64) int64 {
		t.Helper()
		n, err := collection.Count(ctx, userID, pokemonID)
		if err != nil {
			t.Fatalf("failed to count copies: %v", err)
		}
		return n
	}

	t.Run("swap moves copies and debits both parties", func(t *testing.T) {
		s, trainers, collection := seed(t, 1000, 1000)

		quote, err := s.Execute(ctx, "alice", 1, "bob", 4)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if quote.Cost != 180 {
			t.Errorf("Execute() cost = %d, want 180", quote.Cost)
		}

		if got := ownedCount(t, collection, "alice", 4); got != 1 {
			t.Errorf("alice owns %d of entry 4, want 1", got)
		}
		if got := ownedCount(t, collection, "alice", 1); got != 0 {
			t.Errorf("alice owns %d of entry 1, want 0", got)
		}
		if got := ownedCount(t, collection, "bob", 1); got != 1 {
			t.Errorf("bob owns %d of entry 1, want 1", got)
		}

		for _, id := range []string{"alice", "bob"} {
			trainer, err := trainers.GetByDiscordID(ctx, id)
			if err != nil {
				t.Fatalf("failed to load %s: %v", id, err)
			}
			if trainer.Balance != 820 {
				t.Errorf("%s balance = %d, want 820", id, trainer.Balance)
			}
			if trainer.TotalTrades != 1 {
				t.Errorf("%s total_trades = %d, want 1", id, trainer.TotalTrades)
			}
		}
	})

	t.Run("balance floor rejects without side effects", func(t *testing.T) {
		s, trainers, collection := seed(t, 50, 1000)

		_, err := s.Execute(ctx, "alice", 1, "bob", 4)
		if !errors.Is(err, ErrBalanceFloor) {
			t.Fatalf("Execute() error = %v, want ErrBalanceFloor", err)
		}

		if got := ownedCount(t, collection, "alice", 1); got != 1 {
			t.Errorf("alice owns %d of entry 1, want 1", got)
		}
		if got := ownedCount(t, collection, "bob", 4); got != 1 {
			t.Errorf("bob owns %d of entry 4, want 1", got)
		}
		trainer, err := trainers.GetByDiscordID(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to load bob: %v", err)
		}
		if trainer.Balance != 1000 {
			t.Errorf("bob balance = %d, want 1000", trainer.Balance)
		}
	})

	t.Run("failure after the copy moves rolls everything back", func(t *testing.T) {
		s, trainers, collection := seed(t, 1000, 1000)
		boom := errors.New("boom")
		s.afterMove = func(context.Context, bun.Tx) error { return boom }

		_, err := s.Execute(ctx, "alice", 1, "bob", 4)
		if !errors.Is(err, boom) {
			t.Fatalf("Execute() error = %v, want injected failure", err)
		}

		if got := ownedCount(t, collection, "alice", 1); got != 1 {
			t.Errorf("alice owns %d of entry 1, want 1", got)
		}
		if got := ownedCount(t, collection, "bob", 4); got != 1 {
			t.Errorf("bob owns %d of entry 4, want 1", got)
		}
		for _, id := range []string{"alice", "bob"} {
			trainer, err := trainers.GetByDiscordID(ctx, id)
			if err != nil {
				t.Fatalf("failed to load %s: %v", id, err)
			}
			if trainer.Balance != 1000 {
				t.Errorf("%s balance = %d, want 1000", id, trainer.Balance)
			}
			if trainer.TotalTrades != 0 {
				t.Errorf("%s total_trades = %d, want 0", id, trainer.TotalTrades)
			}
		}
	})

	t.Run("unowned entry rejects the whole trade", func(t *testing.T) {
		s, _, collection := seed(t, 1000, 1000)

		_, err := s.Execute(ctx, "alice", 4, "bob", 1)
		if !errors.Is(err, repositories.ErrNotOwned) {
			t.Fatalf("Execute() error = %v, want ErrNotOwned", err)
		}
		if got := ownedCount(t, collection, "alice", 1); got != 1 {
			t.Errorf("alice owns %d of entry 1, want 1", got)
		}
	})
}
