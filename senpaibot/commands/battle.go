package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/battle"
)

var Battle = discord.SlashCommandCreate{
	Name:        "battle",
	Description: "⚔️ Battle another trainer's Pokémon",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "opponent",
			Description: "The trainer to battle",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "pokemon",
			Description: "Your Pokémon (name or dex number)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "theirs",
			Description: "Their Pokémon (name or dex number)",
			Required:    true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "preview",
			Description: "Only show the matchup, don't fight",
		},
	},
}

func BattleHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		opponent := data.User("opponent")
		if opponent.Bot {
			return errorMessage(e, "You cannot battle a bot")
		}

		userID := e.User().ID.String()
		opponentID := opponent.ID.String()

		mine, err := resolveEntry(ctx, b.PokemonRepository, data.String("pokemon"))
		if err != nil {
			return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", data.String("pokemon")))
		}
		theirs, err := resolveEntry(ctx, b.PokemonRepository, data.String("theirs"))
		if err != nil {
			return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", data.String("theirs")))
		}

		if data.Bool("preview") {
			preview, err := b.BattleResolver.Preview(ctx, userID, mine.ID, opponentID, theirs.ID)
			if err != nil {
				return errorMessage(e, battleErrorText(err))
			}
			return successMessage(e, "⚔️ Matchup Preview",
				fmt.Sprintf("**%s** (power %d, %d copies) vs **%s** (power %d, %d copies)\n\nWin chance: **%.0f%%** / **%.0f%%**",
					preview.A.Pokemon.Name, preview.A.FinalPower, preview.A.Copies,
					preview.B.Pokemon.Name, preview.B.FinalPower, preview.B.Copies,
					preview.ChanceA*100, preview.ChanceB*100))
		}

		outcome, err := b.BattleResolver.Resolve(ctx, userID, mine.ID, opponentID, theirs.ID)
		if err != nil {
			return errorMessage(e, battleErrorText(err))
		}

		description := fmt.Sprintf("**%s** (power %d) vs **%s** (power %d)\n\n",
			outcome.A.Pokemon.Name, outcome.A.FinalPower,
			outcome.B.Pokemon.Name, outcome.B.FinalPower)

		if outcome.Tied {
			description += fmt.Sprintf("It's a **draw**! Both trainers gain exp (+%d / +%d).",
				outcome.ExpA, outcome.ExpB)
		} else if outcome.Winner == userID {
			description += fmt.Sprintf("**%s wins!** +%d exp (opponent +%d)",
				e.User().Username, outcome.ExpA, outcome.ExpB)
		} else {
			description += fmt.Sprintf("**%s wins!** +%d exp (you +%d)",
				opponent.Username, outcome.ExpB, outcome.ExpA)
		}

		return successMessage(e, "⚔️ Battle", description)
	}
}

func battleErrorText(err error) string {
	switch {
	case errors.Is(err, battle.ErrSelfBattle):
		return "You cannot battle yourself"
	case errors.Is(err, repositories.ErrNotOwned):
		return "Both trainers must own the Pokémon they send out"
	case errors.Is(err, repositories.ErrPokemonNotFound):
		return "One of those Pokémon doesn't exist"
	default:
		return "The battle failed. Please try again later."
	}
}
