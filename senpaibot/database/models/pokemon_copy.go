package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PokemonCopy is one owned copy. Ownership is counted by row count rather
// than a quantity column so "release all but one" stays a plain DELETE.
type PokemonCopy struct {
	bun.BaseModel `bun:"table:trainer_pokemons,alias:tp"`

	ID        int64  `bun:"id,pk,autoincrement"`
	UserID    string `bun:"user_id,notnull"`
	PokemonID int64  `bun:"pokemon_id,notnull"`

	Obtained time.Time `bun:"obtained,notnull,default:current_timestamp"`
}
