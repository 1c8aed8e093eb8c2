package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
)

var Register = discord.SlashCommandCreate{
	Name:        "register",
	Description: "📝 Register your trainer profile with a display name",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "name",
			Description: "Your trainer name (must be unique)",
			Required:    true,
			MaxLength:   ptr(32),
		},
	},
}

func RegisterHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		name := strings.TrimSpace(e.SlashCommandInteractionData().String("name"))
		if name == "" {
			return errorMessage(e, "Trainer name cannot be empty")
		}

		userID := e.User().ID.String()
		trainer, err := b.TrainerRepository.GetOrCreate(ctx, userID)
		if err != nil {
			return errorMessage(e, "Failed to load your trainer profile")
		}

		existing, err := b.TrainerRepository.GetByDisplayName(ctx, name)
		if err == nil && existing.DiscordID != userID {
			return errorMessage(e, fmt.Sprintf("The name **%s** is already taken", name))
		}
		if err != nil && !errors.Is(err, repositories.ErrTrainerNotFound) {
			return errorMessage(e, "Failed to check name availability")
		}

		trainer.DisplayName = name
		if err := b.TrainerRepository.Update(ctx, trainer); err != nil {
			return errorMessage(e, "Failed to save your trainer name")
		}

		return successMessage(e, "✅ Trainer Registered",
			fmt.Sprintf("Welcome, **%s**! Use `/roll` to catch your first Pokémon.", name))
	}
}

func ptr[T any](v T) *T {
	return &v
}
