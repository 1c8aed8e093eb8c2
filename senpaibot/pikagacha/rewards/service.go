package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/uptrace/bun"
)

// Quiz reward policy.
const (
	QuizBase  = 10
	QuizBonus = 2
	QuizCap   = 50
)

// Streak milestones and the ball tier each one grants.
var streakMilestones = map[int]int{
	5:  models.BallPoke,
	10: models.BallGreat,
	25: models.BallUltra,
	50: models.BallMaster,
}

type Config struct {
	VoiceIntervalSecs int64
	VoiceReward       int64
}

// VoiceResult reports one accrual: how many full intervals elapsed and what
// was credited.
type VoiceResult struct {
	Intervals int64
	Credited  int64
	CarrySecs int64
}

// QuizResult reports one correct answer's rewards.
type QuizResult struct {
	Points   int64
	Streak   int
	BallTier int
}

// Service batches time-based and streak-based reward events into the ledger.
type Service struct {
	db  *bun.DB
	cfg Config
}

func NewService(db *bun.DB, cfg Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// splitIntervals folds a finished session into the carried remainder and
// returns how many full intervals elapsed plus the new remainder.
func splitIntervals(carrySecs, sessionSecs, intervalSecs int64) (int64, int64) {
	if intervalSecs <= 0 {
		return 0, carrySecs
	}
	total := carrySecs + sessionSecs
	if total < 0 {
		total = 0
	}
	return total / intervalSecs, total % intervalSecs
}

// quizPoints is the reward for a correct answer given the streak before this
// answer.
func quizPoints(streak int) int64 {
	points := int64(QuizBase + QuizBonus*streak)
	if points > QuizCap {
		points = QuizCap
	}
	return points
}

// milestoneBall returns the ball tier granted when a streak lands exactly on
// a milestone.
func milestoneBall(streak int) (int, bool) {
	tier, ok := streakMilestones[streak]
	return tier, ok
}

// AccrueVoice folds a finished voice session into the trainer's ledger. Time
// short of a full interval carries over to the next session; multiple elapsed
// intervals credit in one batch.
func (s *Service) AccrueVoice(ctx context.Context, userID string, sessionSecs int64) (*VoiceResult, error) {
	result := &VoiceResult{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}

		intervals, carry := splitIntervals(trainer.VoiceCarrySecs, sessionSecs, s.cfg.VoiceIntervalSecs)
		credited := intervals * s.cfg.VoiceReward

		trainer.Balance += credited
		trainer.VoiceCarrySecs = carry
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to accrue voice reward: %w", err)
		}

		result.Intervals = intervals
		result.Credited = credited
		result.CarrySecs = carry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Credited > 0 {
		slog.Debug("Voice reward accrued",
			slog.String("type", "gacha"),
			slog.String("user_id", userID),
			slog.Int64("intervals", result.Intervals),
			slog.Int64("credited", result.Credited))
	}
	return result, nil
}

// QuizCorrect credits a streak-scaled reward, bumps the streak and grants a
// ball on milestone streaks.
func (s *Service) QuizCorrect(ctx context.Context, userID string) (*QuizResult, error) {
	result := &QuizResult{}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		trainer, err := lockTrainer(ctx, tx, userID)
		if err != nil {
			return err
		}

		points := quizPoints(trainer.CurrentStreak)
		trainer.Balance += points
		trainer.CurrentStreak++
		if trainer.CurrentStreak > trainer.HighestStreak {
			trainer.HighestStreak = trainer.CurrentStreak
		}
		trainer.QuizCorrect++
		trainer.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().Model(trainer).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("failed to credit quiz reward: %w", err)
		}

		result.Points = points
		result.Streak = trainer.CurrentStreak

		if tier, ok := milestoneBall(trainer.CurrentStreak); ok {
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
				return fmt.Errorf("failed to grant milestone ball: %w", err)
			}
			result.BallTier = tier
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// QuizStreakBroken resets the streak. The only penalty is the lost
// continuation bonus; whoever broke the streak gets nothing extra here, that
// reward is an unbuilt extension point.
func (s *Service) QuizStreakBroken(ctx context.Context, userID string) error {
	_, err := s.db.NewUpdate().
		Model((*models.Trainer)(nil)).
		Set("current_streak = 0").
		Set("updated_at = ?", time.Now()).
		Where("discord_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset quiz streak: %w", err)
	}
	return nil
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
