package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/trade"
)

var Trade = discord.SlashCommandCreate{
	Name:        "trade",
	Description: "🔄 Trade one of your Pokémon for another trainer's",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "The trainer to trade with",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "offer",
			Description: "The Pokémon you give (name or dex number)",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "for",
			Description: "The Pokémon you receive (name or dex number)",
			Required:    true,
		},
	},
}

func TradeHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		other := data.User("user")
		if other.Bot {
			return errorMessage(e, "You cannot trade with a bot")
		}

		userID := e.User().ID.String()
		otherID := other.ID.String()

		offered, err := resolveEntry(ctx, b.PokemonRepository, data.String("offer"))
		if err != nil {
			return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", data.String("offer")))
		}
		wanted, err := resolveEntry(ctx, b.PokemonRepository, data.String("for"))
		if err != nil {
			return errorMessage(e, fmt.Sprintf("Unknown Pokémon: %s", data.String("for")))
		}

		if _, err := b.TrainerRepository.GetOrCreate(ctx, userID); err != nil {
			return errorMessage(e, "Failed to load your trainer profile")
		}

		quote, err := b.TradeSettlement.Execute(ctx, userID, offered.ID, otherID, wanted.ID)
		if err != nil {
			return errorMessage(e, tradeErrorText(err, other.Username))
		}

		return successMessage(e, "🔄 Trade Complete",
			fmt.Sprintf("You traded **%s** for **%s** with %s.\n%s\nBoth trainers paid **%d** points.",
				offered.Name, wanted.Name, other.Mention(), rarityStars(quote.Rarity), quote.Cost))
	}
}

func tradeErrorText(err error, otherName string) string {
	switch {
	case errors.Is(err, trade.ErrSelfTrade):
		return "You cannot trade with yourself"
	case errors.Is(err, trade.ErrRarityMismatch):
		return "Both Pokémon must be the same rarity tier"
	case errors.Is(err, trade.ErrBalanceFloor):
		return "One of you cannot afford the trade fee"
	case errors.Is(err, repositories.ErrNotOwned):
		return fmt.Sprintf("You or %s don't own the offered Pokémon", otherName)
	default:
		return "The trade failed. Please try again later."
	}
}
