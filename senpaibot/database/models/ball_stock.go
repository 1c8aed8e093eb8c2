package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ball tiers. Higher tiers open into better rarity tables and larger point
// ranges.
const (
	BallPoke   = 1
	BallGreat  = 2
	BallUltra  = 3
	BallMaster = 4

	BallTierMin = 1
	BallTierMax = 4
)

var ballNames = map[int]string{
	BallPoke:   "poke",
	BallGreat:  "great",
	BallUltra:  "ultra",
	BallMaster: "master",
}

// BallName returns the display name for a ball tier, empty for unknown tiers.
func BallName(tier int) string {
	return ballNames[tier]
}

// ValidBallTier reports whether tier is within the known range.
func ValidBallTier(tier int) bool {
	return tier >= BallTierMin && tier <= BallTierMax
}

type BallStock struct {
	bun.BaseModel `bun:"table:ball_stocks,alias:bs"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull,unique:ball_stocks_user_tier"`
	Tier     int    `bun:"tier,notnull,unique:ball_stocks_user_tier"`
	Quantity int64  `bun:"quantity,notnull,default:0"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
