package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/progression"
)

var Rank = discord.SlashCommandCreate{
	Name:        "rank",
	Description: "🏅 Trainer rank progression",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "View your rank and progress",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "promote",
			Description: "Advance to the next rank",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "prestige",
			Description: "Reset a champion rank for a prestige level",
		},
	},
}

func RankHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		trainer, err := b.TrainerRepository.GetOrCreate(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to load your trainer profile")
		}

		switch *e.SlashCommandInteractionData().SubCommandName {
		case "view":
			description := fmt.Sprintf("Rank: **%s**", trainer.Rank)
			if trainer.Prestige > 0 {
				description += fmt.Sprintf(" (prestige %d)", trainer.Prestige)
			}
			next, ok, err := b.Progression.NextRequirement(trainer.Rank)
			if err != nil {
				return errorMessage(e, "Your rank is not on the ladder, contact an admin")
			}
			if ok {
				description += fmt.Sprintf("\nProgress: **%d / %d** exp toward **%s**",
					trainer.RankExp, next.Requirement, next.Name)
			} else {
				description += "\nYou are at the top of the ladder. `/rank prestige` to go again."
			}
			description += fmt.Sprintf("\nLifetime exp: %d", trainer.TotalExp)
			return successMessage(e, "🏅 Rank", description)

		case "promote":
			result, err := b.Progression.Promote(ctx, userID)
			if err != nil {
				return errorMessage(e, promoteErrorText(err))
			}
			return successMessage(e, "🏅 Promoted!",
				fmt.Sprintf("You are now **%s**! %d exp carried over.\nReward: one **%s ball**.",
					result.NewRank, result.Carry, models.BallName(result.BallTier)))

		case "prestige":
			prestige, err := b.Progression.Prestige(ctx, userID)
			if err != nil {
				return errorMessage(e, promoteErrorText(err))
			}
			return successMessage(e, "🌟 Prestige!",
				fmt.Sprintf("Prestige level **%d**! Back to **%s** with a **master ball** in hand.",
					prestige, b.Progression.BaseRank()))

		default:
			return errorMessage(e, "Unknown subcommand")
		}
	}
}

func promoteErrorText(err error) string {
	switch {
	case errors.Is(err, progression.ErrAlreadyTerminal):
		return "You are already at the top, use `/rank prestige`"
	case errors.Is(err, progression.ErrNotTerminal):
		return "Prestige requires the terminal rank"
	case errors.Is(err, progression.ErrInsufficientExp):
		return "Not enough rank exp yet"
	case errors.Is(err, progression.ErrUnknownRank):
		return "Your rank is not on the ladder, contact an admin"
	default:
		return "The rank change failed. Please try again later."
	}
}
