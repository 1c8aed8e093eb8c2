package balls

import (
	"fmt"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

// RarityWeight is one band of a tier's entry table.
type RarityWeight struct {
	Rarity int
	Weight int
}

// TierTable describes what one ball tier can yield. Weights sum to 100 per
// tier; the point range is inclusive on both ends.
type TierTable struct {
	Tier      int
	PointsMin int64
	PointsMax int64
	Rarities  []RarityWeight
}

// OpenExp is the fixed experience granted when an open yields an entry.
const OpenExp = 5

var tierTables = map[int]TierTable{
	models.BallPoke: {
		Tier:      models.BallPoke,
		PointsMin: 10,
		PointsMax: 50,
		Rarities: []RarityWeight{
			{Rarity: 1, Weight: 60},
			{Rarity: 2, Weight: 25},
			{Rarity: 3, Weight: 10},
			{Rarity: 4, Weight: 4},
			{Rarity: 5, Weight: 1},
		},
	},
	models.BallGreat: {
		Tier:      models.BallGreat,
		PointsMin: 20,
		PointsMax: 80,
		Rarities: []RarityWeight{
			{Rarity: 1, Weight: 40},
			{Rarity: 2, Weight: 30},
			{Rarity: 3, Weight: 18},
			{Rarity: 4, Weight: 8},
			{Rarity: 5, Weight: 4},
		},
	},
	models.BallUltra: {
		Tier:      models.BallUltra,
		PointsMin: 50,
		PointsMax: 150,
		Rarities: []RarityWeight{
			{Rarity: 2, Weight: 35},
			{Rarity: 3, Weight: 30},
			{Rarity: 4, Weight: 20},
			{Rarity: 5, Weight: 10},
			{Rarity: 6, Weight: 5},
		},
	},
	models.BallMaster: {
		Tier:      models.BallMaster,
		PointsMin: 100,
		PointsMax: 300,
		Rarities: []RarityWeight{
			{Rarity: 3, Weight: 30},
			{Rarity: 4, Weight: 30},
			{Rarity: 5, Weight: 25},
			{Rarity: 6, Weight: 10},
			{Rarity: 7, Weight: 5},
		},
	},
}

// TableFor returns the table for a ball tier.
func TableFor(tier int) (TierTable, bool) {
	table, ok := tierTables[tier]
	return table, ok
}

// ValidateTables checks every tier table at startup. A table whose weights do
// not sum to 100 or whose rarity bands are out of range is a deployment error.
func ValidateTables() error {
	for tier := models.BallTierMin; tier <= models.BallTierMax; tier++ {
		table, ok := tierTables[tier]
		if !ok {
			return fmt.Errorf("no table for ball tier %d", tier)
		}
		if table.PointsMin <= 0 || table.PointsMax < table.PointsMin {
			return fmt.Errorf("ball tier %d has invalid point range [%d, %d]", tier, table.PointsMin, table.PointsMax)
		}
		sum := 0
		for _, rw := range table.Rarities {
			if rw.Rarity < 1 || rw.Rarity > models.RarityLegendary {
				return fmt.Errorf("ball tier %d references rarity %d", tier, rw.Rarity)
			}
			if rw.Weight <= 0 {
				return fmt.Errorf("ball tier %d rarity %d has non-positive weight", tier, rw.Rarity)
			}
			sum += rw.Weight
		}
		if sum != 100 {
			return fmt.Errorf("ball tier %d weights sum to %d, want 100", tier, sum)
		}
	}
	return nil
}

// drawRarity resolves a rarity from the table given a uniform roll in [0, 100).
func (t TierTable) drawRarity(roll int) int {
	threshold := 0
	for _, rw := range t.Rarities {
		threshold += rw.Weight
		if roll < threshold {
			return rw.Rarity
		}
	}
	return t.Rarities[len(t.Rarities)-1].Rarity
}

// drawPoints resolves a point award from the table given a uniform roll in
// [0, PointsMax-PointsMin].
func (t TierTable) drawPoints(roll int64) int64 {
	return t.PointsMin + roll
}
