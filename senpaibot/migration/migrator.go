package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Migrator imports trainer state from a legacy SenpaiBot MongoDB database
// into the relational schema. Steps run in dependency order: trainers first,
// then the inventories and ball stocks referencing them.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	collNames map[string]string
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 1000,
		collNames: map[string]string{
			"trainers": "trainers",
			"pokemons": "userPokemons",
			"balls":    "userBalls",
		},
	}
}

// SetBatchSize overrides the default insert batch size.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

// SetCollectionName overrides a legacy collection name.
func (m *Migrator) SetCollectionName(kind, name string) {
	if kind != "" && name != "" {
		m.collNames[kind] = name
	}
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	start := time.Now()
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"trainers", m.MigrateTrainers},
		{"pokemons", m.MigrateOwnedPokemons},
		{"balls", m.MigrateBallStocks},
	}

	for _, step := range steps {
		slog.Info("Starting migration step", slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		slog.Info("Completed migration step", slog.String("step", step.name))
	}

	slog.Info("Legacy migration completed", slog.Duration("took", time.Since(start)))
	return nil
}

// MigrateTrainers imports trainer documents, deduplicating on discord id with
// the last document winning.
func (m *Migrator) MigrateTrainers(ctx context.Context) error {
	cur, err := m.mongoDB.Collection(m.collNames["trainers"]).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query legacy trainers: %w", err)
	}
	defer cur.Close(ctx)

	byID := make(map[string]*models.Trainer)
	duplicates := 0
	for cur.Next(ctx) {
		var mt MongoTrainer
		if err := cur.Decode(&mt); err != nil {
			continue
		}
		if mt.DiscordID == "" {
			continue
		}
		if _, exists := byID[mt.DiscordID]; exists {
			duplicates++
		}
		byID[mt.DiscordID] = convertTrainer(mt)
	}
	if err := cur.Err(); err != nil {
		return err
	}

	trainers := make([]*models.Trainer, 0, len(byID))
	for _, t := range byID {
		trainers = append(trainers, t)
	}

	for start := 0; start < len(trainers); start += m.batchSize {
		end := start + m.batchSize
		if end > len(trainers) {
			end = len(trainers)
		}
		batch := trainers[start:end]

		_, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (discord_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert trainer batch: %w", err)
		}
	}

	slog.Info("Trainers imported",
		slog.Int("count", len(trainers)),
		slog.Int("duplicates", duplicates))
	return nil
}

// MigrateOwnedPokemons expands legacy count-per-entry documents into
// row-per-copy inventory rows, skipping entries missing from the catalog.
func (m *Migrator) MigrateOwnedPokemons(ctx context.Context) error {
	validIDs, err := m.catalogIDs(ctx)
	if err != nil {
		return err
	}

	cur, err := m.mongoDB.Collection(m.collNames["pokemons"]).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query legacy pokemons: %w", err)
	}
	defer cur.Close(ctx)

	var copies []*models.PokemonCopy
	var favorites []*models.Favorite
	skipped := 0

	for cur.Next(ctx) {
		var mp MongoOwnedPokemon
		if err := cur.Decode(&mp); err != nil {
			continue
		}

		pokemonID := int64(mp.PokemonID)
		if mp.UserID == "" || !validIDs[pokemonID] {
			skipped++
			continue
		}

		obtained := mp.Obtained
		if obtained.IsZero() {
			obtained = time.Now()
		}
		count := int64(mp.Count)
		if count < 1 {
			count = 1
		}
		for i := int64(0); i < count; i++ {
			copies = append(copies, &models.PokemonCopy{
				UserID:    mp.UserID,
				PokemonID: pokemonID,
				Obtained:  obtained,
			})
		}
		if mp.Favorite {
			favorites = append(favorites, &models.Favorite{
				UserID:    mp.UserID,
				PokemonID: pokemonID,
				CreatedAt: obtained,
			})
		}

		if len(copies) >= m.batchSize {
			if err := m.insertCopies(ctx, copies); err != nil {
				return err
			}
			copies = copies[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}

	if len(copies) > 0 {
		if err := m.insertCopies(ctx, copies); err != nil {
			return err
		}
	}
	if len(favorites) > 0 {
		_, err := m.pgDB.NewInsert().
			Model(&favorites).
			On("CONFLICT (user_id, pokemon_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert favorites: %w", err)
		}
	}

	slog.Info("Inventories imported",
		slog.Int("favorites", len(favorites)),
		slog.Int("skipped", skipped))
	return nil
}

// MigrateBallStocks imports per-user ball counts, dropping tiers outside the
// known range.
func (m *Migrator) MigrateBallStocks(ctx context.Context) error {
	cur, err := m.mongoDB.Collection(m.collNames["balls"]).Find(ctx, bson.D{})
	if err != nil {
		slog.Warn("Legacy ball collection not found, skipping")
		return nil
	}
	defer cur.Close(ctx)

	var stocks []*models.BallStock
	now := time.Now()
	for cur.Next(ctx) {
		var mb MongoBallStock
		if err := cur.Decode(&mb); err != nil {
			continue
		}
		tier := int(mb.Tier)
		quantity := int64(mb.Count)
		if mb.UserID == "" || !models.ValidBallTier(tier) || quantity <= 0 {
			continue
		}
		stocks = append(stocks, &models.BallStock{
			UserID:    mb.UserID,
			Tier:      tier,
			Quantity:  quantity,
			UpdatedAt: now,
		})
	}
	if err := cur.Err(); err != nil {
		return err
	}

	if len(stocks) > 0 {
		_, err := m.pgDB.NewInsert().
			Model(&stocks).
			On("CONFLICT (user_id, tier) DO UPDATE").
			Set("quantity = EXCLUDED.quantity").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert ball stocks: %w", err)
		}
	}

	slog.Info("Ball stocks imported", slog.Int("count", len(stocks)))
	return nil
}

func (m *Migrator) catalogIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	err := m.pgDB.NewSelect().
		Model((*models.Pokemon)(nil)).
		Column("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog ids: %w", err)
	}

	valid := make(map[int64]bool, len(ids))
	for _, id := range ids {
		valid[id] = true
	}
	return valid, nil
}

func (m *Migrator) insertCopies(ctx context.Context, copies []*models.PokemonCopy) error {
	if _, err := m.pgDB.NewInsert().Model(&copies).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert copy batch: %w", err)
	}
	return nil
}

func convertTrainer(mt MongoTrainer) *models.Trainer {
	now := time.Now()
	created := mt.Created
	if created.IsZero() {
		created = now
	}

	displayName := mt.DisplayName
	if displayName == "" {
		displayName = mt.DiscordID
	}

	trainer := &models.Trainer{
		DiscordID:     mt.DiscordID,
		DisplayName:   displayName,
		Balance:       int64(mt.Coins),
		Savings:       int64(mt.Savings),
		Rank:          mt.Rank,
		RankExp:       int64(mt.RankExp),
		TotalExp:      int64(mt.TotalExp),
		Prestige:      int(mt.Prestige),
		Team:          mt.Team,
		CurrentStreak: int(mt.Streak),
		HighestStreak: int(mt.MaxStreak),
		TotalRolls:    int64(mt.Rolls),
		TotalBricks:   int64(mt.Bricks),
		TotalTrades:   int64(mt.Trades),
		BattlesWon:    int64(mt.Wins),
		BattlesLost:   int64(mt.Losses),
		CreatedAt:     created,
		UpdatedAt:     now,
	}
	if trainer.Rank == "" {
		trainer.Rank = "rookie"
	}
	if trainer.Savings < 0 {
		trainer.Savings = 0
	}

	// The legacy counters drifted negative on long streaks; clamp them into
	// the floored model.
	trainer.PityThree = clampPity(int(mt.PityThree), models.PityBaseThree)
	trainer.PityFour = clampPity(int(mt.PityFour), models.PityBaseFour)
	trainer.PityFive = clampPity(int(mt.PityFive), models.PityBaseFive)
	trainer.PityFocus = clampPity(int(mt.PityFocus), models.PityBaseFocus)
	if trainer.PityThree+trainer.PityFour+trainer.PityFive+trainer.PityFocus < models.PityDrawRange {
		trainer.ResetPity()
	}

	return trainer
}

func clampPity(value, baseline int) int {
	if value == 0 {
		return baseline
	}
	if value < 0 {
		return 0
	}
	return value
}
