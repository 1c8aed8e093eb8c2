package commands

import (
	"fmt"
	"math"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
)

const entriesPerPage = 10

var Collection = discord.SlashCommandCreate{
	Name:        "collection",
	Description: "📖 Browse a trainer's Pokémon collection",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Whose collection to view (default: yours)",
		},
	},
}

type collectionLine struct {
	id    int64
	name  string
	stars string
	count int64
	fav   bool
}

func CollectionHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		target := e.User()
		if user, ok := data.OptUser("user"); ok {
			target = user
		}
		targetID := target.ID.String()

		entries, err := b.CollectionRepository.CountGroupedByEntry(ctx, targetID)
		if err != nil {
			return errorMessage(e, "Failed to load the collection")
		}
		if len(entries) == 0 {
			return errorMessage(e, fmt.Sprintf("**%s** hasn't caught anything yet", target.Username))
		}

		favorites, err := b.CollectionRepository.GetFavorites(ctx, targetID)
		if err != nil {
			return errorMessage(e, "Failed to load favorites")
		}
		favSet := make(map[int64]bool, len(favorites))
		for _, f := range favorites {
			favSet[f.PokemonID] = true
		}

		lines := make([]collectionLine, 0, len(entries))
		total := int64(0)
		for _, entry := range entries {
			pokemon, err := b.PokemonRepository.GetByID(ctx, entry.PokemonID)
			if err != nil {
				continue
			}
			total += entry.Count
			lines = append(lines, collectionLine{
				id:    pokemon.ID,
				name:  pokemon.Name,
				stars: rarityStars(pokemon.Rarity),
				count: entry.Count,
				fav:   favSet[pokemon.ID],
			})
		}

		totalPages := int(math.Ceil(float64(len(lines)) / float64(entriesPerPage)))
		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * entriesPerPage
				end := min(start+entriesPerPage, len(lines))

				description := ""
				for _, line := range lines[start:end] {
					marker := ""
					if line.fav {
						marker = " ❤️"
					}
					description += fmt.Sprintf("`#%04d` **%s** %s ×%d%s\n",
						line.id, line.name, line.stars, line.count, marker)
				}

				embed.SetTitle(fmt.Sprintf("📖 %s's Collection", target.Username)).
					SetDescription(description).
					SetColor(infoColor).
					SetFooter(fmt.Sprintf("%d unique • %d total • Page %d/%d",
						len(lines), total, page+1, totalPages), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
