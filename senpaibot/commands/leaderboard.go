package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
)

const leaderboardSize = 10

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 The richest trainers on the server",
}

func LeaderboardHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		top, err := b.TrainerRepository.GetTopByBalance(ctx, leaderboardSize)
		if err != nil {
			return errorMessage(e, "Failed to load the leaderboard. Please try again later.")
		}
		if len(top) == 0 {
			return errorMessage(e, "Nobody has any points yet. Go roll!")
		}

		medals := []string{"🥇", "🥈", "🥉"}
		var sb strings.Builder
		for i, trainer := range top {
			marker := fmt.Sprintf("`%2d.`", i+1)
			if i < len(medals) {
				marker = medals[i]
			}
			fmt.Fprintf(&sb, "%s **%s** — %d points\n", marker, trainer.DisplayName, trainer.Balance)
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🏆 Trainer Leaderboard",
				Description: sb.String(),
				Color:       goldColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
