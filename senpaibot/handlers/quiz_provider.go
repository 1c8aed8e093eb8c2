package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// StaticQuestionProvider cycles through a fixed question list. Good enough
// for the built-in trivia loop; richer feeds implement QuestionProvider.
type StaticQuestionProvider struct {
	mu        sync.Mutex
	questions []Question
	next      int
}

func NewStaticQuestionProvider(questions []Question) *StaticQuestionProvider {
	return &StaticQuestionProvider{questions: questions}
}

func (p *StaticQuestionProvider) Next() (Question, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.questions) == 0 {
		return Question{}, false
	}
	question := p.questions[p.next%len(p.questions)]
	p.next++
	return question, true
}

// DefaultQuestions is the built-in trivia set.
var DefaultQuestions = []Question{
	{Prompt: "Which Pokémon is number 25 in the Pokédex?", Answer: "pikachu"},
	{Prompt: "What evolves into Charizard?", Answer: "charmeleon"},
	{Prompt: "Which stone evolves Eevee into Vaporeon?", Answer: "water stone"},
	{Prompt: "What type is super effective against Water?", Answer: "electric"},
	{Prompt: "Which Pokémon is known as the Genetic Pokémon?", Answer: "mewtwo"},
	{Prompt: "How many badges are needed to enter the Indigo League?", Answer: "8"},
}

// StartQuizRoutine posts a fresh question on a fixed cadence whenever none is
// open. It stops when ctx is cancelled.
func (l *QuizListener) StartQuizRoutine(ctx context.Context, client bot.Client, channelID snowflake.ID, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.mu.Lock()
				open := l.current != nil
				l.mu.Unlock()
				if open {
					continue
				}

				question, ok := l.Open(channelID.String())
				if !ok {
					return
				}
				_, err := client.Rest().CreateMessage(channelID, discord.MessageCreate{
					Content: "❓ **Quiz time!** " + question.Prompt,
				})
				if err != nil {
					slog.Error("Failed to post quiz question",
						slog.String("type", "quiz"),
						slog.Any("error", err))
				}
			}
		}
	}()
}
