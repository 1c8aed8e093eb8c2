package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DefaultFavoriteLimit bounds favorites per trainer unless overridden in config.
const DefaultFavoriteLimit = 6

type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:f"`

	ID        int64  `bun:"id,pk,autoincrement"`
	UserID    string `bun:"user_id,notnull,unique:favorites_user_pokemon"`
	PokemonID int64  `bun:"pokemon_id,notnull,unique:favorites_user_pokemon"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
