package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/rewards"
)

// Question is one open quiz prompt.
type Question struct {
	Prompt string
	Answer string
}

// QuestionProvider supplies the next prompt after one is answered. The
// trivia feed is pluggable so tests and seasonal events can swap it out.
type QuestionProvider interface {
	Next() (Question, bool)
}

// QuizListener watches chat for answers to the open question. A correct
// answer from a new trainer breaks the previous holder's streak before the
// winner is credited.
type QuizListener struct {
	rewards  *rewards.Service
	trainers repositories.TrainerRepository
	provider QuestionProvider

	mu        sync.Mutex
	current   *Question
	holderID  string
	channelID string
}

func NewQuizListener(rewards *rewards.Service, trainers repositories.TrainerRepository, provider QuestionProvider) *QuizListener {
	return &QuizListener{rewards: rewards, trainers: trainers, provider: provider}
}

// Open posts state for a new question bound to one channel and returns the
// prompt to announce. It returns false when the provider is exhausted.
func (l *QuizListener) Open(channelID string) (Question, bool) {
	question, ok := l.provider.Next()
	if !ok {
		return Question{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = &question
	l.channelID = channelID
	return question, true
}

// OnMessageCreate checks guild messages against the open question.
func (l *QuizListener) OnMessageCreate(e *events.GuildMessageCreate) {
	if e.Message.Author.Bot {
		return
	}

	l.mu.Lock()
	if l.current == nil || e.ChannelID.String() != l.channelID {
		l.mu.Unlock()
		return
	}
	if !answersMatch(e.Message.Content, l.current.Answer) {
		l.mu.Unlock()
		return
	}

	winnerID := e.Message.Author.ID.String()
	previousHolder := l.holderID
	l.holderID = winnerID
	l.current = nil
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if previousHolder != "" && previousHolder != winnerID {
		if err := l.rewards.QuizStreakBroken(ctx, previousHolder); err != nil {
			slog.Error("Failed to break quiz streak",
				slog.String("type", "quiz"),
				slog.String("user_id", previousHolder),
				slog.Any("error", err))
		}
	}

	if _, err := l.trainers.GetOrCreate(ctx, winnerID); err != nil {
		slog.Error("Failed to load trainer for quiz reward",
			slog.String("type", "quiz"),
			slog.String("user_id", winnerID),
			slog.Any("error", err))
		return
	}

	result, err := l.rewards.QuizCorrect(ctx, winnerID)
	if err != nil {
		slog.Error("Failed to credit quiz reward",
			slog.String("type", "quiz"),
			slog.String("user_id", winnerID),
			slog.Any("error", err))
		return
	}

	announcement := fmt.Sprintf("✅ %s got it! +%d points (streak %d)",
		e.Message.Author.Mention(), result.Points, result.Streak)
	if result.BallTier > 0 {
		announcement += " 🎁 milestone ball!"
	}
	if _, err := e.Client().Rest().CreateMessage(e.ChannelID, discord.MessageCreate{
		Content:          announcement,
		MessageReference: &discord.MessageReference{MessageID: &e.Message.ID},
	}); err != nil {
		slog.Error("Failed to announce quiz result",
			slog.String("type", "quiz"),
			slog.Any("error", err))
	}

	slog.Info("Quiz answered",
		slog.String("type", "quiz"),
		slog.String("user_id", winnerID),
		slog.Int64("points", result.Points),
		slog.Int("streak", result.Streak))
}

func answersMatch(message, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(message), strings.TrimSpace(answer))
}
