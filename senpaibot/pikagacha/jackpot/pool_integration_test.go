package jackpot

import (
	"context"
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/testdb"
)

func TestPool_ProcessPayoutIntegration(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	seed := func(t *testing.T, contributions map[string]int64) (*Pool, repositories.TrainerRepository) {
		t.Helper()
		testdb.Reset(t, db)

		trainers := repositories.NewTrainerRepository(db.BunDB())
		pool := NewPool(db.BunDB(), repositories.NewJackpotRepository(db.BunDB()), Config{
			PerRoll:   1,
			Threshold: 3,
		})
		pool.rng = func(int) int { return 0 }

		for _, id := range []string{"alice", "bob", "carol"} {
			if err := trainers.Create(ctx, &models.Trainer{DiscordID: id, DisplayName: id}); err != nil {
				t.Fatalf("failed to seed trainer %s: %v", id, err)
			}
		}
		for id, amount := range contributions {
			if err := pool.Contribute(ctx, id, amount); err != nil {
				t.Fatalf("failed to contribute for %s: %v", id, err)
			}
		}
		return pool, trainers
	}

	t.Run("eligible contributors split a doubled pool", func(t *testing.T) {
		pool, trainers := seed(t, map[string]int64{"alice": 5, "bob": 1, "carol": 3})

		res, err := pool.ProcessPayout(ctx, models.RarityLegendary)
		if err != nil {
			t.Fatalf("ProcessPayout() error = %v", err)
		}

		if res.Total != 9 {
			t.Errorf("Total = %d, want 9", res.Total)
		}
		if res.Multiplier != 2 {
			t.Errorf("Multiplier = %d, want 2", res.Multiplier)
		}
		if len(res.Payouts) != 2 {
			t.Fatalf("Payouts = %d, want 2", len(res.Payouts))
		}
		if res.Share != 9 {
			t.Errorf("Share = %d, want 9", res.Share)
		}

		var paid int64
		for _, p := range res.Payouts {
			paid += p.Share
			if p.BallTier < models.BallUltra {
				t.Errorf("payout ball tier %d for %s below the legendary floor", p.BallTier, p.UserID)
			}
		}
		if paid > res.Total*res.Multiplier {
			t.Errorf("paid %d exceeds adjusted pool %d", paid, res.Total*res.Multiplier)
		}

		for id, want := range map[string]int64{"alice": 9, "bob": 0, "carol": 9} {
			trainer, err := trainers.GetByDiscordID(ctx, id)
			if err != nil {
				t.Fatalf("failed to load %s: %v", id, err)
			}
			if trainer.Balance != want {
				t.Errorf("%s balance = %d, want %d", id, trainer.Balance, want)
			}
		}

		var stocks []*models.BallStock
		if err := db.BunDB().NewSelect().Model(&stocks).Scan(ctx); err != nil {
			t.Fatalf("failed to load ball stocks: %v", err)
		}
		if len(stocks) != 2 {
			t.Errorf("ball stock rows = %d, want 2", len(stocks))
		}

		total, err := pool.Total(ctx)
		if err != nil {
			t.Fatalf("Total() error = %v", err)
		}
		if total != 0 {
			t.Errorf("pool total after payout = %d, want 0", total)
		}
	})

	t.Run("payout with nobody eligible still clears the pool", func(t *testing.T) {
		pool, trainers := seed(t, map[string]int64{"bob": 1})

		res, err := pool.ProcessPayout(ctx, models.RarityShiny)
		if err != nil {
			t.Fatalf("ProcessPayout() error = %v", err)
		}
		if len(res.Payouts) != 0 {
			t.Errorf("Payouts = %d, want 0", len(res.Payouts))
		}
		if res.Total != 1 || res.Multiplier != 1 {
			t.Errorf("Total/Multiplier = %d/%d, want 1/1", res.Total, res.Multiplier)
		}

		trainer, err := trainers.GetByDiscordID(ctx, "bob")
		if err != nil {
			t.Fatalf("failed to load bob: %v", err)
		}
		if trainer.Balance != 0 {
			t.Errorf("bob balance = %d, want 0", trainer.Balance)
		}

		total, err := pool.Total(ctx)
		if err != nil {
			t.Fatalf("Total() error = %v", err)
		}
		if total != 0 {
			t.Errorf("pool total after payout = %d, want 0", total)
		}
	})
}
