package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

var Favorite = discord.SlashCommandCreate{
	Name:        "favorite",
	Description: "❤️ Mark a Pokémon as a favorite (protects it from release)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "pokemon",
			Description: "Name or dex number",
			Required:    true,
		},
	},
}

func FavoriteHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		arg := e.SlashCommandInteractionData().String("pokemon")
		pokemon, err := resolveEntry(ctx, b.PokemonRepository, arg)
		if err != nil {
			return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", arg))
		}

		userID := e.User().ID.String()
		owned, err := b.CollectionRepository.Count(ctx, userID, pokemon.ID)
		if err != nil {
			return errorMessage(e, "Failed to check your collection")
		}
		if owned < 1 {
			return errorMessage(e, fmt.Sprintf("You don't own **%s**", pokemon.Name))
		}

		on, err := b.CollectionRepository.ToggleFavorite(ctx, userID, pokemon.ID, b.Cfg.Gacha.FavoriteLimit)
		if err != nil {
			if errors.Is(err, repositories.ErrFavoriteLimit) {
				return errorMessage(e, fmt.Sprintf("You can only have %d favorites", b.Cfg.Gacha.FavoriteLimit))
			}
			return errorMessage(e, "Failed to update favorites")
		}

		if on {
			return successMessage(e, "❤️ Favorited",
				fmt.Sprintf("**%s** is now a favorite and protected from bulk release.", pokemon.Name))
		}
		return successMessage(e, "💔 Unfavorited",
			fmt.Sprintf("**%s** is no longer a favorite.", pokemon.Name))
	}
}
