package commands

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

var Balance = discord.SlashCommandCreate{
	Name:        "balance",
	Description: "💰 View your points, savings and ball stocks",
}

func BalanceHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		trainer, err := b.TrainerRepository.GetOrCreate(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to fetch your balance. Please try again later.")
		}

		stocks, err := b.BallRepository.All(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to fetch your ball stocks.")
		}

		description := fmt.Sprintf("```ansi\n"+
			"\x1b[1;36mPoints:\x1b[0m  %d\n"+
			"\x1b[1;35mSavings:\x1b[0m %d\n"+
			"\x1b[1;33mWealth:\x1b[0m  %d\n"+
			"\n"+
			"\x1b[1;37mBalls\x1b[0m\n"+
			"  Poké:   %d\n"+
			"  Great:  %d\n"+
			"  Ultra:  %d\n"+
			"  Master: %d\n"+
			"```",
			trainer.Balance,
			trainer.Savings,
			trainer.Balance+trainer.Savings,
			stocks[models.BallPoke],
			stocks[models.BallGreat],
			stocks[models.BallUltra],
			stocks[models.BallMaster],
		)

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💰 Balance",
				Description: description,
				Color:       successColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("%s • %s", trainer.DisplayName, trainer.Rank),
				},
				Timestamp: &now,
			}},
		})
	}
}
