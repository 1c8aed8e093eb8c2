package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/progression"
)

var Team = discord.SlashCommandCreate{
	Name:        "team",
	Description: "🚩 Pledge to a trainer team",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "join",
			Description: "Join or switch to a team",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "team",
					Description: "Which team",
					Required:    true,
					Choices:     teamChoices(),
				},
			},
		},
	},
}

func teamChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(progression.Teams))
	for _, team := range progression.Teams {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  "Team " + team,
			Value: team,
		})
	}
	return choices
}

func TeamHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		userID := e.User().ID.String()
		trainer, err := b.TrainerRepository.GetOrCreate(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to load your trainer profile")
		}
		firstJoin := trainer.Team == ""

		team := e.SlashCommandInteractionData().String("team")
		if err := b.Progression.SwitchTeam(ctx, userID, team); err != nil {
			return errorMessage(e, teamErrorText(err))
		}

		if firstJoin {
			return successMessage(e, "🚩 Team Joined",
				fmt.Sprintf("Welcome to **Team %s**! The first pledge is free.", team))
		}
		return successMessage(e, "🚩 Team Switched",
			fmt.Sprintf("You defected to **Team %s**. The switch cost %d points and reset your rank.",
				team, b.Cfg.Gacha.TeamSwitchCost))
	}
}

func teamErrorText(err error) string {
	switch {
	case errors.Is(err, progression.ErrSameTeam):
		return "You are already on that team"
	case errors.Is(err, progression.ErrInvalidTeam):
		return "Unknown team"
	case errors.Is(err, progression.ErrInsufficientBalance):
		return "You cannot afford the switch fee"
	default:
		return "The team change failed. Please try again later."
	}
}
