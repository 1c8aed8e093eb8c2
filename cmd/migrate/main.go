// Command migrate imports a legacy SenpaiBot MongoDB database into the
// relational schema without starting the bot. The catalog must already be
// seeded, owned copies referencing unknown entries are skipped.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/logger"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/migration"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	path := flag.String("config", "config.toml", "path to config")
	batchSize := flag.Int("batch-size", 0, "override the insert batch size")
	flag.Parse()

	cfg, err := senpaibot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	if cfg.Legacy.MongoURI == "" {
		slog.Error("No legacy mongo_uri configured")
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(-1)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Legacy.MongoURI))
	if err != nil {
		slog.Error("Failed to connect to legacy database", slog.Any("error", err))
		os.Exit(-1)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	migrator := migration.NewMigrator(db.BunDB(), client, cfg.Legacy.Database)
	if *batchSize > 0 {
		migrator.SetBatchSize(*batchSize)
	}

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Migration completed successfully")
}
