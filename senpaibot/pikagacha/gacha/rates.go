package gacha

import (
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

// First-stage draw. A wide uniform draw decides whether the roll short-circuits
// into one of the two jackpot-triggering tiers before pity is consulted.
const (
	FirstDrawRange = 100000
	LegendaryCut   = 100 // rarity 7, ~0.1%
	ShinyCut       = 400 // rarity 6, ~0.3% on top of the legendary band
)

// Outcome is a resolved rarity. Focus marks the tier-5 bucket above all three
// pity thresholds, which draws from the featured pool instead of the general
// rarity-5 pool.
type Outcome struct {
	Rarity int
	Focus  bool
}

// ResolveOutcome maps the two uniform draws onto a rarity. first is in
// [0, FirstDrawRange); second is in [0, models.PityDrawRange) and is checked
// against the trainer's pity thresholds in ascending order.
func ResolveOutcome(first, second, pityThree, pityFour, pityFive int) Outcome {
	if first < LegendaryCut {
		return Outcome{Rarity: models.RarityLegendary}
	}
	if first < ShinyCut {
		return Outcome{Rarity: models.RarityShiny}
	}

	threshold := pityThree
	if second < threshold {
		return Outcome{Rarity: 3}
	}
	threshold += pityFour
	if second < threshold {
		return Outcome{Rarity: 4}
	}
	threshold += pityFive
	if second < threshold {
		return Outcome{Rarity: 5}
	}
	return Outcome{Rarity: 5, Focus: true}
}
