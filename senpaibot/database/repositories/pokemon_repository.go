package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

var ErrPokemonNotFound = errors.New("pokemon not found")

const pokemonCacheSize = 2048

type PokemonRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Pokemon, error)
	GetByName(ctx context.Context, name string) (*models.Pokemon, error)
	GetAll(ctx context.Context) ([]*models.Pokemon, error)
	RollOptions(ctx context.Context, rarity int, region string) ([]*models.Pokemon, error)
	FeaturedByRarity(ctx context.Context, rarity int) ([]*models.Pokemon, error)
	BulkUpsert(ctx context.Context, pokemons []*models.Pokemon) (int, error)
}

type pokemonRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewPokemonRepository(db *bun.DB) PokemonRepository {
	cache, _ := lru.New(pokemonCacheSize)
	return &pokemonRepository{db: db, cache: cache}
}

func (r *pokemonRepository) GetByID(ctx context.Context, id int64) (*models.Pokemon, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.(*models.Pokemon), nil
	}

	pokemon := new(models.Pokemon)
	err := r.db.NewSelect().
		Model(pokemon).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPokemonNotFound
		}
		return nil, fmt.Errorf("failed to get pokemon: %w", err)
	}

	r.cache.Add(id, pokemon)
	return pokemon, nil
}

func (r *pokemonRepository) GetByName(ctx context.Context, name string) (*models.Pokemon, error) {
	pokemon := new(models.Pokemon)
	err := r.db.NewSelect().
		Model(pokemon).
		Where("LOWER(name) = LOWER(?)", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPokemonNotFound
		}
		return nil, fmt.Errorf("failed to get pokemon by name: %w", err)
	}
	return pokemon, nil
}

func (r *pokemonRepository) GetAll(ctx context.Context) ([]*models.Pokemon, error) {
	var pokemons []*models.Pokemon
	err := r.db.NewSelect().
		Model(&pokemons).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pokemons: %w", err)
	}
	return pokemons, nil
}

// RollOptions returns the candidate pool for a resolved rarity. Inactive rows
// never roll; rarity 6+ pools also pull in active specials regardless of the
// region filter.
func (r *pokemonRepository) RollOptions(ctx context.Context, rarity int, region string) ([]*models.Pokemon, error) {
	var pokemons []*models.Pokemon

	q := r.db.NewSelect().Model(&pokemons).Where("active")
	if rarity >= models.RarityShiny {
		if region != "" {
			q = q.Where("(rarity = ? AND region = ?) OR (special AND active)", rarity, region)
		} else {
			q = q.Where("rarity = ? OR (special AND active)", rarity)
		}
	} else {
		q = q.Where("rarity = ?", rarity).Where("NOT special")
		if region != "" {
			q = q.Where("region = ?", region)
		}
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get roll options: %w", err)
	}
	return pokemons, nil
}

// FeaturedByRarity returns the focus pool: active featured entries of a rarity.
func (r *pokemonRepository) FeaturedByRarity(ctx context.Context, rarity int) ([]*models.Pokemon, error) {
	var pokemons []*models.Pokemon
	err := r.db.NewSelect().
		Model(&pokemons).
		Where("active AND featured AND rarity = ?", rarity).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured pool: %w", err)
	}
	return pokemons, nil
}

// BulkUpsert replaces catalog rows by id. It only ever touches the pokemons
// table, so an administrative re-seed cannot disturb inventories or ledgers.
func (r *pokemonRepository) BulkUpsert(ctx context.Context, pokemons []*models.Pokemon) (int, error) {
	if len(pokemons) == 0 {
		return 0, nil
	}

	now := time.Now()
	for _, p := range pokemons {
		p.Region = models.RegionForID(p.ID)
		p.UpdatedAt = now
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}

	res, err := r.db.NewInsert().
		Model(&pokemons).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("rarity = EXCLUDED.rarity").
		Set("power = EXCLUDED.power").
		Set("region = EXCLUDED.region").
		Set("featured = EXCLUDED.featured").
		Set("special = EXCLUDED.special").
		Set("active = EXCLUDED.active").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert catalog: %w", err)
	}

	r.cache.Purge()

	affected, _ := res.RowsAffected()
	return int(affected), nil
}
