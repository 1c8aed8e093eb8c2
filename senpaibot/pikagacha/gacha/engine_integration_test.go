package gacha

import (
	"context"
	"errors"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/testdb"
)

func TestEngine_RollIntegration(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	seed := func(t *testing.T, balance int64) (*Engine, repositories.TrainerRepository) {
		t.Helper()
		testdb.Reset(t, db)

		pokemons := repositories.NewPokemonRepository(db.BunDB())
		trainers := repositories.NewTrainerRepository(db.BunDB())

		catalog := make([]*models.Pokemon, 0, 7)
		names := []string{"caterpie", "pidgey", "growlithe", "lapras", "dragonite", "starmie", "mewtwo"}
		for rarity := 1; rarity <= 7; rarity++ {
			catalog = append(catalog, &models.Pokemon{
				ID:     int64(rarity),
				Name:   names[rarity-1],
				Rarity: rarity,
				Power:  int64(rarity * 10),
				Active: true,
			})
		}
		if _, err := pokemons.BulkUpsert(ctx, catalog); err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}

		if err := trainers.Create(ctx, &models.Trainer{
			DiscordID:   "alice",
			DisplayName: "alice",
			Balance:     balance,
		}); err != nil {
			t.Fatalf("failed to seed trainer: %v", err)
		}

		engine := NewEngine(db.BunDB(), pokemons, Config{RollCost: 30, JackpotPerRoll: 1})
		return engine, trainers
	}

	copiesOwned := func(t *testing.T, userID string) int {
		t.Helper()
		n, err := db.BunDB().NewSelect().
			Model((*models.PokemonCopy)(nil)).
			Where("user_id = ?", userID).
			Count(ctx)
		if err != nil {
			t.Fatalf("failed to count copies: %v", err)
		}
		return n
	}

	t.Run("three rolls drain the balance, the fourth hits the floor", func(t *testing.T) {
		engine, trainers := seed(t, 100)

		for i := 0; i < 3; i++ {
			result, err := engine.Roll(ctx, "alice", "")
			if err != nil {
				t.Fatalf("Roll() #%d error = %v", i+1, err)
			}
			if result.Pokemon == nil {
				t.Fatalf("Roll() #%d returned no pokemon", i+1)
			}
		}

		trainer, err := trainers.GetByDiscordID(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to load trainer: %v", err)
		}
		if trainer.Balance != 10 {
			t.Errorf("balance after three rolls = %d, want 10", trainer.Balance)
		}
		if trainer.TotalRolls != 3 {
			t.Errorf("total_rolls = %d, want 3", trainer.TotalRolls)
		}
		if got := copiesOwned(t, "alice"); got != 3 {
			t.Errorf("copies owned = %d, want 3", got)
		}

		_, err = engine.Roll(ctx, "alice", "")
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Fatalf("Roll() error = %v, want ErrInsufficientBalance", err)
		}

		trainer, err = trainers.GetByDiscordID(ctx, "alice")
		if err != nil {
			t.Fatalf("failed to load trainer: %v", err)
		}
		if trainer.Balance != 10 {
			t.Errorf("balance after rejected roll = %d, want 10", trainer.Balance)
		}
		if got := copiesOwned(t, "alice"); got != 3 {
			t.Errorf("copies after rejected roll = %d, want 3", got)
		}
	})

	t.Run("each roll credits the jackpot pool", func(t *testing.T) {
		engine, _ := seed(t, 100)

		for i := 0; i < 2; i++ {
			if _, err := engine.Roll(ctx, "alice", ""); err != nil {
				t.Fatalf("Roll() #%d error = %v", i+1, err)
			}
		}

		contributions := repositories.NewJackpotRepository(db.BunDB())
		amount, err := contributions.UserContribution(ctx, "alice")
		if err != nil {
			t.Fatalf("UserContribution() error = %v", err)
		}
		if amount != 2 {
			t.Errorf("jackpot contribution = %d, want 2", amount)
		}
	})
}
