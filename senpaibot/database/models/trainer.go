package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Pity baselines for the second-stage rarity draw. The four counters are
// thresholds consulted in ascending order inside a fixed 0..999 draw range,
// so shifting weight between them changes the odds without changing the range.
const (
	PityBaseThree = 700
	PityBaseFour  = 250
	PityBaseFive  = 40
	PityBaseFocus = 10

	PityStep      = 5
	PityDrawRange = PityBaseThree + PityBaseFour + PityBaseFive + PityBaseFocus
)

type Trainer struct {
	bun.BaseModel `bun:"table:trainers,alias:t"`

	ID          int64  `bun:"id,pk,autoincrement"`
	DiscordID   string `bun:"discord_id,notnull,unique"`
	DisplayName string `bun:"display_name,notnull,unique"`

	// Ledger
	Balance int64 `bun:"balance,notnull,default:0"`
	Savings int64 `bun:"savings,notnull,default:0"`

	// Pity counters, reset to baseline whenever a roll resolves at tier 5+
	PityThree int `bun:"pity_three,notnull,default:700"`
	PityFour  int `bun:"pity_four,notnull,default:250"`
	PityFive  int `bun:"pity_five,notnull,default:40"`
	PityFocus int `bun:"pity_focus,notnull,default:10"`

	// Progression
	Rank     string `bun:"rank,notnull,default:'rookie'"`
	RankExp  int64  `bun:"rank_exp,notnull,default:0"`
	TotalExp int64  `bun:"total_exp,notnull,default:0"`
	Prestige int    `bun:"prestige,notnull,default:0"`
	Team     string `bun:"team,notnull,default:''"`

	// Quiz streaks
	CurrentStreak int `bun:"current_streak,notnull,default:0"`
	HighestStreak int `bun:"highest_streak,notnull,default:0"`

	// Voice time not yet converted into a full reward interval
	VoiceCarrySecs int64 `bun:"voice_carry_secs,notnull,default:0"`

	// Lifetime counters, only ever increase
	TotalRolls    int64 `bun:"total_rolls,notnull,default:0"`
	TotalBricks   int64 `bun:"total_bricks,notnull,default:0"`
	TotalReleases int64 `bun:"total_releases,notnull,default:0"`
	TotalTrades   int64 `bun:"total_trades,notnull,default:0"`
	BattlesWon    int64 `bun:"battles_won,notnull,default:0"`
	BattlesLost   int64 `bun:"battles_lost,notnull,default:0"`
	BallsOpened   int64 `bun:"balls_opened,notnull,default:0"`
	QuizCorrect   int64 `bun:"quiz_correct,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ResetPity puts all four counters back at their baselines.
func (t *Trainer) ResetPity() {
	t.PityThree = PityBaseThree
	t.PityFour = PityBaseFour
	t.PityFive = PityBaseFive
	t.PityFocus = PityBaseFocus
}

// ShiftPity moves weight from the low tiers toward the high ones after a
// below-tier-5 outcome. The low counters floor at zero; the draw range is
// fixed, so the focus bucket simply absorbs whatever the thresholds no longer
// cover.
func (t *Trainer) ShiftPity() {
	t.PityThree -= PityStep
	if t.PityThree < 0 {
		t.PityThree = 0
	}
	t.PityFour -= PityStep
	if t.PityFour < 0 {
		t.PityFour = 0
	}
	t.PityFive += PityStep
	t.PityFocus += PityStep
}
