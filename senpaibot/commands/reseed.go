package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
)

var Reseed = discord.SlashCommandCreate{
	Name:        "reseed",
	Description: "🛠️ Replace the Pokémon catalog from a CSV feed (admin only)",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionAttachment{
			Name:        "file",
			Description: "CSV with columns id,name,rarity,power,featured,special,active",
			Required:    true,
		},
	},
}

func ReseedHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if !b.IsAdmin(e.User().ID) {
			return errorMessage(e, "This command is restricted to administrators")
		}

		attachment := e.SlashCommandInteractionData().Attachment("file")

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachment.URL, nil)
		if err != nil {
			return updateErrorMessage(e, "Failed to fetch the feed")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return updateErrorMessage(e, "Failed to download the feed")
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return updateErrorMessage(e, fmt.Sprintf("Feed download returned %d", resp.StatusCode))
		}

		count, err := b.CatalogSeeder.Seed(ctx, resp.Body)
		if err != nil {
			return updateErrorMessage(e, fmt.Sprintf("The feed was rejected: %v\nNo catalog rows were changed.", err))
		}

		return updateSuccessMessage(e, "🛠️ Catalog Reseeded",
			fmt.Sprintf("Upserted **%d** catalog entries. Inventories and ledgers were untouched.", count),
			successColor)
	}
}
