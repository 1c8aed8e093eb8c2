package battle

import (
	"context"
	"errors"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/testdb"
)

func TestResolver_ResolveIntegration(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	seed := func(t *testing.T) (*Resolver, repositories.TrainerRepository, repositories.CollectionRepository) {
		t.Helper()
		testdb.Reset(t, db)

		pokemons := repositories.NewPokemonRepository(db.BunDB())
		trainers := repositories.NewTrainerRepository(db.BunDB())
		collection := repositories.NewCollectionRepository(db.BunDB())

		if _, err := pokemons.BulkUpsert(ctx, []*models.Pokemon{
			{ID: 6, Name: "charizard", Rarity: 5, Power: 100, Active: true},
			{ID: 9, Name: "blastoise", Rarity: 5, Power: 80, Active: true},
		}); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
		for _, id := range []string{"alice", "bob"} {
			if err := trainers.Create(ctx, &models.Trainer{DiscordID: id, DisplayName: id}); err != nil {
				t.Fatalf("failed to seed trainer %s: %v", id, err)
			}
		}
		if err := collection.Add(ctx, "alice", 6); err != nil {
			t.Fatalf("failed to seed copy: %v", err)
		}
		if err := collection.Add(ctx, "bob", 9); err != nil {
			t.Fatalf("failed to seed copy: %v", err)
		}

		resolver := NewResolver(db.BunDB(), pokemons, collection)
		resolver.rng = func(int) int { return 0 }
		return resolver, trainers, collection
	}

	t.Run("higher power wins and both sides settle", func(t *testing.T) {
		resolver, trainers, _ := seed(t)

		outcome, err := resolver.Resolve(ctx, "alice", 6, "bob", 9)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if outcome.Winner != "alice" || outcome.Loser != "bob" || outcome.Tied {
			t.Fatalf("Resolve() = winner %q loser %q tied %v, want alice/bob/false",
				outcome.Winner, outcome.Loser, outcome.Tied)
		}
		if outcome.ExpA != winExpMin || outcome.ExpB != lossExpMin {
			t.Errorf("exp = %d/%d, want %d/%d", outcome.ExpA, outcome.ExpB, winExpMin, lossExpMin)
		}

		alice, err := trainers.GetByDiscordID(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to load alice: %v", err)
		}
		if alice.BattlesWon != 1 || alice.RankExp != int64(winExpMin) {
			t.Errorf("alice won %d with %d exp, want 1 with %d", alice.BattlesWon, alice.RankExp, winExpMin)
		}
		bob, err := trainers.GetByDiscordID(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to load bob: %v", err)
		}
		if bob.BattlesLost != 1 || bob.RankExp != int64(lossExpMin) {
			t.Errorf("bob lost %d with %d exp, want 1 with %d", bob.BattlesLost, bob.RankExp, lossExpMin)
		}
	})

	t.Run("copy released before settling aborts the battle", func(t *testing.T) {
		resolver, trainers, collection := seed(t)

		a, err := resolver.loadSide(ctx, "alice", 6)
		if err != nil {
			t.Fatalf("loadSide() error = %v", err)
		}
		b, err := resolver.loadSide(ctx, "bob", 9)
		if err != nil {
			t.Fatalf("loadSide() error = %v", err)
		}

		if err := collection.RemoveOne(ctx, "bob", 9, repositories.ReleaseRequest{}); err != nil {
			t.Fatalf("RemoveOne() error = %v", err)
		}

		outcome := &Outcome{A: a, B: b, Winner: "alice", Loser: "bob", ExpA: 50, ExpB: 10}
		if err := resolver.settle(ctx, outcome); !errors.Is(err, repositories.ErrNotOwned) {
			t.Fatalf("settle() error = %v, want ErrNotOwned", err)
		}

		alice, err := trainers.GetByDiscordID(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to load alice: %v", err)
		}
		if alice.BattlesWon != 0 || alice.RankExp != 0 {
			t.Errorf("alice settled won %d exp %d, want nothing recorded", alice.BattlesWon, alice.RankExp)
		}
	})
}
