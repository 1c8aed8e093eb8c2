package migration

import (
	"time"
)

// MongoTrainer is a trainer document from the legacy SenpaiBot database.
type MongoTrainer struct {
	DiscordID   string  `bson:"discordId"`
	DisplayName string  `bson:"name"`
	Coins       float64 `bson:"coins"`
	Savings     float64 `bson:"savings"`
	Rank        string  `bson:"rank"`
	RankExp     float64 `bson:"rankExp"`
	TotalExp    float64 `bson:"totalExp"`
	Prestige    float64 `bson:"prestige"`
	Team        string  `bson:"team"`
	Streak      float64 `bson:"streak"`
	MaxStreak   float64 `bson:"maxStreak"`

	PityThree float64 `bson:"pity3"`
	PityFour  float64 `bson:"pity4"`
	PityFive  float64 `bson:"pity5"`
	PityFocus float64 `bson:"pityFocus"`

	Rolls   float64   `bson:"rolls"`
	Bricks  float64   `bson:"bricks"`
	Trades  float64   `bson:"trades"`
	Wins    float64   `bson:"wins"`
	Losses  float64   `bson:"losses"`
	Created time.Time `bson:"createdAt"`
}

// MongoOwnedPokemon is one owned-copy document from the legacy database. The
// legacy schema stored a count per entry; the import expands it to one row
// per copy.
type MongoOwnedPokemon struct {
	UserID    string    `bson:"userId"`
	PokemonID float64   `bson:"pokemonId"`
	Count     float64   `bson:"count"`
	Favorite  bool      `bson:"fav"`
	Obtained  time.Time `bson:"obtained"`
}

// MongoBallStock is a per-user ball count document.
type MongoBallStock struct {
	UserID string  `bson:"userId"`
	Tier   float64 `bson:"tier"`
	Count  float64 `bson:"count"`
}
