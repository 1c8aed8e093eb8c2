package jackpot

import (
	"testing"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func Test_multiplierFor(t *testing.T) {
	tests := []struct {
		name   string
		rarity int
		want   int64
	}{
		{name: "legendary doubles", rarity: models.RarityLegendary, want: 2},
		{name: "event tier doubles", rarity: models.RarityEvent, want: 2},
		{name: "shiny stays flat", rarity: models.RarityShiny, want: 1},
		{name: "low rarity stays flat", rarity: 3, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := multiplierFor(tt.rarity); got != tt.want {
				t.Errorf("multiplierFor(%d) = %d, want %d", tt.rarity, got, tt.want)
			}
		})
	}
}

func Test_ballTierWeights(t *testing.T) {
	tests := []struct {
		name string
		pool int64
		want [4]int
	}{
		{name: "empty pool", pool: 0, want: [4]int{50, 30, 15, 5}},
		{name: "half scale", pool: 1000, want: [4]int{31, 30, 27, 12}},
		{name: "at cap", pool: 2000, want: [4]int{10, 30, 40, 20}},
		{name: "beyond cap clamps", pool: 50000, want: [4]int{10, 30, 40, 20}},
		{name: "negative pool clamps to zero", pool: -5, want: [4]int{50, 30, 15, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ballTierWeights(tt.pool)
			sum := got[0] + got[1] + got[2] + got[3]
			if sum != 100 {
				t.Fatalf("ballTierWeights(%d) sums to %d, want 100", tt.pool, sum)
			}
			if got != tt.want {
				t.Errorf("ballTierWeights(%d) = %v, want %v", tt.pool, got, tt.want)
			}
		})
	}
}

func Test_drawBallTier(t *testing.T) {
	tests := []struct {
		name      string
		roll      int
		pool      int64
		floorTier int
		want      int
	}{
		{name: "low roll on empty pool is poke", roll: 0, pool: 0, floorTier: 0, want: models.BallPoke},
		{name: "highest roll on empty pool is master", roll: 99, pool: 0, floorTier: 0, want: models.BallMaster},
		{name: "legendary floor lifts poke to ultra", roll: 0, pool: 0, floorTier: models.BallUltra, want: models.BallUltra},
		{name: "legendary floor leaves master alone", roll: 99, pool: 2000, floorTier: models.BallUltra, want: models.BallMaster},
		{name: "capped pool favors upper tiers", roll: 45, pool: 2000, floorTier: 0, want: models.BallUltra},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drawBallTier(tt.roll, tt.pool, tt.floorTier); got != tt.want {
				t.Errorf("drawBallTier(%d, %d, %d) = %d, want %d", tt.roll, tt.pool, tt.floorTier, got, tt.want)
			}
		})
	}
}

func Test_drawBallTierExhaustive(t *testing.T) {
	for _, pool := range []int64{0, 500, 2000, 100000} {
		for roll := 0; roll < 100; roll++ {
			tier := drawBallTier(roll, pool, 0)
			if !models.ValidBallTier(tier) {
				t.Fatalf("drawBallTier(%d, %d, 0) = %d outside tier range", roll, pool, tier)
			}
		}
	}
}
