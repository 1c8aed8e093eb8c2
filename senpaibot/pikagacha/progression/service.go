package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrAlreadyTerminal     = errors.New("already at the terminal rank, prestige instead")
	ErrNotTerminal         = errors.New("prestige requires the terminal rank")
	ErrInsufficientExp     = errors.New("not enough rank experience to promote")
	ErrUnknownRank         = errors.New("trainer has a rank not on the ladder")
	ErrInvalidTeam         = errors.New("unknown team")
	ErrSameTeam            = errors.New("already on that team")
	ErrInsufficientBalance = errors.New("insufficient balance for team switch")
)

// Teams a trainer can pledge to.
var Teams = []string{"red", "blue", "yellow"}

type Config struct {
	TeamSwitchCost int64
	MinBalance     int64
}

// PromoteResult reports a successful promotion and any container reward.
type PromoteResult struct {
	NewRank  string
	Carry    int64
	BallTier int
}

// Service runs the rank ladder state machine. The ladder is loaded once from
// the rank table at startup and treated as immutable afterwards.
type Service struct {
	db     *bun.DB
	ladder []models.RankRequirement
	cfg    Config
}

func NewService(db *bun.DB, cfg Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// LoadLadder reads the ordered rank table. Must be called before any other
// method.
func (s *Service) LoadLadder(ctx context.Context) error {
	var ladder []models.RankRequirement
	err := s.db.NewSelect().
		Model(&ladder).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rank ladder: %w", err)
	}
	if err := validateLadder(ladder); err != nil {
		return err
	}
	s.ladder = ladder
	return nil
}

// validateLadder rejects short or non-ascending ladders before any promotion
// math runs against them.
func validateLadder(ladder []models.RankRequirement) error {
	if len(ladder) < 2 {
		return fmt.Errorf("rank ladder has %d rows, need at least 2", len(ladder))
	}
	for i := 1; i < len(ladder); i++ {
		if ladder[i].Requirement <= ladder[i-1].Requirement {
			return fmt.Errorf("rank ladder not strictly ascending: %q (%d) follows %q (%d)",
				ladder[i].Name, ladder[i].Requirement,
				ladder[i-1].Name, ladder[i-1].Requirement)
		}
	}
	return nil
}

// BaseRank is the ladder's first rank.
func (s *Service) BaseRank() string {
	return s.ladder[0].Name
}

// NextRequirement returns the rank above current for display purposes. The
// second return is false at the terminal rank.
func (s *Service) NextRequirement(current string) (models.RankRequirement, bool, error) {
	return nextRank(s.ladder, current)
}

// nextRank returns the rank above current, or false at the terminal rank.
func nextRank(ladder []models.RankRequirement, current string) (models.RankRequirement, bool, error) {
	for i, r := range ladder {
		if r.Name == current {
			if i == len(ladder)-1 {
				return models.RankRequirement{}, false, nil
			}
			return ladder[i+1], true, nil
		}
	}
	return models.RankRequirement{}, false, fmt.Errorf("%w: %q", ErrUnknownRank, current)
}

// promotionBallTier maps the position being promoted into onto a ball reward.
func promotionBallTier(position int) int {
	tier := position/2 + 1
	if tier > models.BallTierMax {
		tier = models.BallTierMax
	}
	if tier < models.BallTierMin {
		tier = models.BallTierMin
	}
	return tier
}

// ValidTeam reports whether name is a known team.
func ValidTeam(name string) bool {
	for _, t := range Teams {
		if t == name {
			return true
		}
	}
	return false
}

// AddExp credits rank and lifetime experience and reports whether the next
// rank's threshold is now met. It never promotes on its own.
func (s *Service) AddExp(ctx context.Context, userID string, amount int64) (bool, error) {
	canPromote := false
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}

		trainer.RankExp += amount
		trainer.TotalExp += amount
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to add exp: %w", err)
		}

		next, ok, err := nextRank(s.ladder, trainer.Rank)
		if err != nil {
			return err
		}
		canPromote = ok && trainer.RankExp >= next.Requirement
		return nil
	})
	return canPromote, err
}

// Promote advances one rank. The threshold is subtracted from rank experience
// so the overflow carries into the new rank.
func (s *Service) Promote(ctx context.Context, userID string) (*PromoteResult, error) {
	var result *PromoteResult
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}

		next, ok, err := nextRank(s.ladder, trainer.Rank)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyTerminal
		}
		if trainer.RankExp < next.Requirement {
			return ErrInsufficientExp
		}

		trainer.Rank = next.Name
		trainer.RankExp -= next.Requirement
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to promote: %w", err)
		}

		tier := promotionBallTier(next.Position)
		if err := grantBall(ctx, tx, userID, tier); err != nil {
			return err
		}

		result = &PromoteResult{NewRank: next.Name, Carry: trainer.RankExp, BallTier: tier}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Trainer promoted",
		slog.String("type", "gacha"),
		slog.String("user_id", userID),
		slog.String("rank", result.NewRank))
	return result, nil
}

// Prestige resets a terminal-rank trainer to the base rank for a permanent
// prestige level and a master ball.
func (s *Service) Prestige(ctx context.Context, userID string) (int, error) {
	prestige := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}

		_, ok, err := nextRank(s.ladder, trainer.Rank)
		if err != nil {
			return err
		}
		if ok {
			return ErrNotTerminal
		}

		trainer.Prestige++
		trainer.Rank = s.ladder[0].Name
		trainer.RankExp = 0
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to prestige: %w", err)
		}

		if err := grantBall(ctx, tx, userID, models.BallMaster); err != nil {
			return err
		}
		prestige = trainer.Prestige
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("Trainer prestiged",
		slog.String("type", "gacha"),
		slog.String("user_id", userID),
		slog.Int("prestige", prestige))
	return prestige, nil
}

// SwitchTeam moves a trainer to a new team. The first join is free; leaving a
// team charges the switch cost and resets rank progress to base.
func (s *Service) SwitchTeam(ctx context.Context, userID string, newTeam string) error {
	if !ValidTeam(newTeam) {
		return fmt.Errorf("%w: %q", ErrInvalidTeam, newTeam)
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}
		if trainer.Team == newTeam {
			return ErrSameTeam
		}

		if trainer.Team != "" {
			if trainer.Balance-s.cfg.TeamSwitchCost < s.cfg.MinBalance {
				return ErrInsufficientBalance
			}
			trainer.Balance -= s.cfg.TeamSwitchCost
			trainer.Rank = s.ladder[0].Name
			trainer.RankExp = 0
		}

		trainer.Team = newTeam
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to switch team: %w", err)
		}
		return nil
	})
}

func lockTrainer(ctx context.Context, tx bun.Tx, userID string) (*models.Trainer, error) {
	trainer := new(models.Trainer)
	err := tx.NewSelect().
		Model(trainer).
		Where("discord_id = ?", userID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock trainer: %w", err)
	}
	return trainer, nil
}

func grantBall(ctx context.Context, tx bun.Tx, userID string, tier int) error {
	stock := &models.BallStock{
		UserID:    userID,
		Tier:      tier,
		Quantity:  1,
		UpdatedAt: time.Now(),
	}
	_, err := tx.NewInsert().
		Model(stock).
		On("CONFLICT (user_id, tier) DO UPDATE").
		Set("quantity = bs.quantity + 1").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant rank ball: %w", err)
	}
	return nil
}
