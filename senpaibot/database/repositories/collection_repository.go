package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrNotOwned          = errors.New("pokemon not owned")
	ErrFavoriteLimit     = errors.New("favorite limit reached")
	ErrProtectedFavorite = errors.New("pokemon is favorited")
)

// ReleaseRequest tags destructive removals with whether favorited entries are
// protected. The check lives here, once, instead of in every caller.
type ReleaseRequest struct {
	RespectFavorites bool
}

// EntryCount is one line of a grouped inventory count.
type EntryCount struct {
	PokemonID int64 `bun:"pokemon_id"`
	Count     int64 `bun:"count"`
}

type CollectionRepository interface {
	Add(ctx context.Context, userID string, pokemonID int64) error
	RemoveOne(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) error
	RemoveBulk(ctx context.Context, userID string, pokemonID int64, n int64, req ReleaseRequest) (int64, error)
	Count(ctx context.Context, userID string, pokemonID int64) (int64, error)
	CountGroupedByEntry(ctx context.Context, userID string) ([]EntryCount, error)
	ReleaseDuplicates(ctx context.Context, userID string, rarity int, region string, req ReleaseRequest) (int64, error)
	ReleaseAllOfEntry(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) (int64, error)
	ReleaseDupesOfEntry(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) (int64, error)
	ToggleFavorite(ctx context.Context, userID string, pokemonID int64, limit int) (bool, error)
	IsFavorite(ctx context.Context, userID string, pokemonID int64) (bool, error)
	GetFavorites(ctx context.Context, userID string) ([]*models.Favorite, error)
}

type collectionRepository struct {
	db *bun.DB
}

func NewCollectionRepository(db *bun.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Add(ctx context.Context, userID string, pokemonID int64) error {
	copyRow := &models.PokemonCopy{
		UserID:    userID,
		PokemonID: pokemonID,
		Obtained:  time.Now(),
	}
	_, err := r.db.NewInsert().Model(copyRow).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add pokemon copy: %w", err)
	}
	return nil
}

func (r *collectionRepository) guardFavorite(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) error {
	if !req.RespectFavorites {
		return nil
	}
	fav, err := r.IsFavorite(ctx, userID, pokemonID)
	if err != nil {
		return err
	}
	if fav {
		return ErrProtectedFavorite
	}
	return nil
}

func (r *collectionRepository) RemoveOne(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) error {
	n, err := r.RemoveBulk(ctx, userID, pokemonID, 1, req)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotOwned
	}
	return nil
}

// RemoveBulk deletes up to n copies, capped at the owned count. Removing more
// than owned is not an error; the caller sees how many actually went.
func (r *collectionRepository) RemoveBulk(ctx context.Context, userID string, pokemonID int64, n int64, req ReleaseRequest) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if err := r.guardFavorite(ctx, userID, pokemonID, req); err != nil {
		return 0, err
	}

	res, err := r.db.NewDelete().
		Model((*models.PokemonCopy)(nil)).
		Where("id IN (SELECT id FROM trainer_pokemons WHERE user_id = ? AND pokemon_id = ? ORDER BY id LIMIT ?)",
			userID, pokemonID, n).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to remove copies: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

func (r *collectionRepository) Count(ctx context.Context, userID string, pokemonID int64) (int64, error) {
	count, err := r.db.NewSelect().
		Model((*models.PokemonCopy)(nil)).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count copies: %w", err)
	}
	return int64(count), nil
}

func (r *collectionRepository) CountGroupedByEntry(ctx context.Context, userID string) ([]EntryCount, error) {
	var counts []EntryCount
	err := r.db.NewSelect().
		Model((*models.PokemonCopy)(nil)).
		ColumnExpr("pokemon_id").
		ColumnExpr("COUNT(*) AS count").
		Where("user_id = ?", userID).
		GroupExpr("pokemon_id").
		OrderExpr("pokemon_id").
		Scan(ctx, &counts)
	if err != nil {
		return nil, fmt.Errorf("failed to count collection: %w", err)
	}
	return counts, nil
}

// ReleaseDuplicates keeps the oldest copy of every over-owned entry of the
// given rarity (optionally narrowed to a region) and deletes the rest.
func (r *collectionRepository) ReleaseDuplicates(ctx context.Context, userID string, rarity int, region string, req ReleaseRequest) (int64, error) {
	q := r.db.NewDelete().
		Model((*models.PokemonCopy)(nil)).
		Where("user_id = ?", userID).
		Where("pokemon_id IN (SELECT id FROM pokemons WHERE rarity = ?"+regionClause(region)+")", regionArgs(rarity, region)...).
		Where("id NOT IN (SELECT MIN(id) FROM trainer_pokemons WHERE user_id = ? GROUP BY pokemon_id)", userID)

	if req.RespectFavorites {
		q = q.Where("pokemon_id NOT IN (SELECT pokemon_id FROM favorites WHERE user_id = ?)", userID)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release duplicates: %w", err)
	}

	removed, _ := res.RowsAffected()
	slog.Debug("Released duplicates",
		slog.String("type", "db"),
		slog.String("user_id", userID),
		slog.Int("rarity", rarity),
		slog.Int64("removed", removed))
	return removed, nil
}

func regionClause(region string) string {
	if region == "" {
		return ""
	}
	return " AND region = ?"
}

func regionArgs(rarity int, region string) []interface{} {
	if region == "" {
		return []interface{}{rarity}
	}
	return []interface{}{rarity, region}
}

func (r *collectionRepository) ReleaseAllOfEntry(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) (int64, error) {
	if err := r.guardFavorite(ctx, userID, pokemonID, req); err != nil {
		return 0, err
	}

	res, err := r.db.NewDelete().
		Model((*models.PokemonCopy)(nil)).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release entry: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

func (r *collectionRepository) ReleaseDupesOfEntry(ctx context.Context, userID string, pokemonID int64, req ReleaseRequest) (int64, error) {
	if err := r.guardFavorite(ctx, userID, pokemonID, req); err != nil {
		return 0, err
	}

	res, err := r.db.NewDelete().
		Model((*models.PokemonCopy)(nil)).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Where("id NOT IN (SELECT MIN(id) FROM trainer_pokemons WHERE user_id = ? AND pokemon_id = ?)",
			userID, pokemonID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to release duplicates of entry: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}

// ToggleFavorite flips favorite state and returns the new state. Turning a
// favorite ON past the per-user bound fails with ErrFavoriteLimit. The check
// and the insert run in one transaction serialized on the trainer row, so two
// concurrent toggles cannot both slip past the limit.
func (r *collectionRepository) ToggleFavorite(ctx context.Context, userID string, pokemonID int64, limit int) (bool, error) {
	if limit <= 0 {
		limit = models.DefaultFavoriteLimit
	}

	var favorited bool
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var trainer models.Trainer
		err := tx.NewSelect().
			Model(&trainer).
			Where("discord_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to lock trainer: %w", err)
		}

		exists, err := tx.NewSelect().
			Model((*models.Favorite)(nil)).
			Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check favorite: %w", err)
		}

		if exists {
			_, err := tx.NewDelete().
				Model((*models.Favorite)(nil)).
				Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to unfavorite: %w", err)
			}
			favorited = false
			return nil
		}

		count, err := tx.NewSelect().
			Model((*models.Favorite)(nil)).
			Where("user_id = ?", userID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count favorites: %w", err)
		}
		if count >= limit {
			return ErrFavoriteLimit
		}

		_, err = tx.NewInsert().
			Model(&models.Favorite{UserID: userID, PokemonID: pokemonID, CreatedAt: time.Now()}).
			On("CONFLICT (user_id, pokemon_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to favorite: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (r *collectionRepository) IsFavorite(ctx context.Context, userID string, pokemonID int64) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Favorite)(nil)).
		Where("user_id = ? AND pokemon_id = ?", userID, pokemonID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

func (r *collectionRepository) GetFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	var favorites []*models.Favorite
	err := r.db.NewSelect().
		Model(&favorites).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get favorites: %w", err)
	}
	return favorites, nil
}
