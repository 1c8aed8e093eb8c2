package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
)

var Jackpot = discord.SlashCommandCreate{
	Name:        "jackpot",
	Description: "🎰 View the shared jackpot pool",
}

func JackpotHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		total, err := b.JackpotPool.Total(ctx)
		if err != nil {
			return errorMessage(e, "Failed to read the jackpot pool")
		}
		mine, err := b.JackpotPool.UserContribution(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to read your contribution")
		}
		eligible, err := b.JackpotPool.IsEligible(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to check your eligibility")
		}

		status := "❌ Not eligible yet, keep rolling!"
		if eligible {
			status = "✅ Eligible for the next payout"
		}
		description := fmt.Sprintf(
			"Pool: **%d** points\nYour contribution: **%d**\n%s\n\nEvery roll feeds the pool. A shiny or better pull pays it out.",
			total, mine, status)

		return successMessage(e, "🎰 Jackpot", description)
	}
}
