package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/rewards"
)

// VoiceTracker turns voice channel presence into reward accruals. Join times
// live in memory only; a restart forfeits any session in progress.
type VoiceTracker struct {
	rewards  *rewards.Service
	trainers repositories.TrainerRepository
	joins    sync.Map // user id -> time.Time
}

func NewVoiceTracker(rewards *rewards.Service, trainers repositories.TrainerRepository) *VoiceTracker {
	return &VoiceTracker{rewards: rewards, trainers: trainers}
}

// OnVoiceStateUpdate tracks joins and settles sessions on leave. Moving
// between channels keeps the session running.
func (t *VoiceTracker) OnVoiceStateUpdate(e *events.GuildVoiceStateUpdate) {
	if e.Member.User.Bot {
		return
	}
	userID := e.VoiceState.UserID.String()

	inChannel := e.VoiceState.ChannelID != nil
	if inChannel {
		t.joins.LoadOrStore(userID, time.Now())
		return
	}

	joined, ok := t.joins.LoadAndDelete(userID)
	if !ok {
		return
	}
	sessionSecs := int64(time.Since(joined.(time.Time)).Seconds())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := t.trainers.GetOrCreate(ctx, userID); err != nil {
		slog.Error("Failed to load trainer for voice reward",
			slog.String("type", "voice"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return
	}

	result, err := t.rewards.AccrueVoice(ctx, userID, sessionSecs)
	if err != nil {
		slog.Error("Failed to accrue voice reward",
			slog.String("type", "voice"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return
	}
	if result.Credited > 0 {
		slog.Info("Voice session settled",
			slog.String("type", "voice"),
			slog.String("user_id", userID),
			slog.Int64("session_secs", sessionSecs),
			slog.Int64("credited", result.Credited))
	}
}
