package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrNameTaken       = errors.New("display name already taken")
)

type TrainerRepository interface {
	Create(ctx context.Context, trainer *models.Trainer) error
	GetByDiscordID(ctx context.Context, discordID string) (*models.Trainer, error)
	GetByDisplayName(ctx context.Context, name string) (*models.Trainer, error)
	GetOrCreate(ctx context.Context, discordID string) (*models.Trainer, error)
	Update(ctx context.Context, trainer *models.Trainer) error
	Delete(ctx context.Context, discordID string) error
	IncrementReleases(ctx context.Context, discordID string, n int64) error
	GetTopByBalance(ctx context.Context, limit int) ([]*models.Trainer, error)
}

type trainerRepository struct {
	db *bun.DB
}

func NewTrainerRepository(db *bun.DB) TrainerRepository {
	return &trainerRepository{db: db}
}

func (r *trainerRepository) Create(ctx context.Context, trainer *models.Trainer) error {
	trainer.CreatedAt = time.Now()
	trainer.UpdatedAt = time.Now()
	if trainer.Rank == "" {
		trainer.Rank = "rookie"
	}
	trainer.ResetPity()

	_, err := r.db.NewInsert().Model(trainer).Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "display_name") {
			return ErrNameTaken
		}
		return fmt.Errorf("failed to create trainer: %w", err)
	}
	return nil
}

func (r *trainerRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.Trainer, error) {
	trainer := new(models.Trainer)
	err := r.db.NewSelect().
		Model(trainer).
		Where("discord_id = ?", discordID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	return trainer, nil
}

func (r *trainerRepository) GetByDisplayName(ctx context.Context, name string) (*models.Trainer, error) {
	trainer := new(models.Trainer)
	err := r.db.NewSelect().
		Model(trainer).
		Where("LOWER(display_name) = LOWER(?)", name).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, fmt.Errorf("failed to get trainer by name: %w", err)
	}
	return trainer, nil
}

// GetOrCreate lazily materializes the ledger on first reference. The discord
// id doubles as a placeholder display name until the trainer registers one.
func (r *trainerRepository) GetOrCreate(ctx context.Context, discordID string) (*models.Trainer, error) {
	trainer, err := r.GetByDiscordID(ctx, discordID)
	if err == nil {
		return trainer, nil
	}
	if !errors.Is(err, ErrTrainerNotFound) {
		return nil, err
	}

	trainer = &models.Trainer{
		DiscordID:   discordID,
		DisplayName: discordID,
	}
	if err := r.Create(ctx, trainer); err != nil {
		// Lost a create race; the row exists now.
		if existing, getErr := r.GetByDiscordID(ctx, discordID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	slog.Debug("Trainer created lazily",
		slog.String("type", "db"),
		slog.String("user_id", discordID))
	return trainer, nil
}

func (r *trainerRepository) Update(ctx context.Context, trainer *models.Trainer) error {
	trainer.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(trainer).
		WherePK().
		Exec(ctx)
	return err
}

// Delete is the administrative purge path; nothing else removes trainers.
func (r *trainerRepository) Delete(ctx context.Context, discordID string) error {
	_, err := r.db.NewDelete().
		Model((*models.Trainer)(nil)).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

func (r *trainerRepository) IncrementReleases(ctx context.Context, discordID string, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := r.db.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("total_releases = total_releases + ?", n).
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", discordID).
		Exec(ctx)
	return err
}

func (r *trainerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*models.Trainer, error) {
	var trainers []*models.Trainer
	err := r.db.NewSelect().
		Model(&trainers).
		OrderExpr("balance DESC").
		Limit(limit).
		Scan(ctx)
	return trainers, err
}
