package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
)

var Pokedex = discord.SlashCommandCreate{
	Name:        "pokedex",
	Description: "🔍 Look up a Pokémon by name or dex number",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "query",
			Description:  "Name or dex number",
			Required:     true,
			Autocomplete: true,
		},
	},
}

func PokedexHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		query := strings.TrimSpace(e.SlashCommandInteractionData().String("query"))
		matches, err := b.PokedexSearch.Search(ctx, query, 5)
		if err != nil {
			return errorMessage(e, "The Pokédex lookup failed. Please try again later.")
		}
		if len(matches) == 0 {
			return errorMessage(e, fmt.Sprintf("No Pokémon matches **%s**", query))
		}

		top := matches[0]
		owned, err := b.CollectionRepository.Count(ctx, e.User().ID.String(), top.ID)
		if err != nil {
			owned = 0
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "**#%04d %s**\n%s\n", top.ID, top.Name, rarityStars(top.Rarity))
		fmt.Fprintf(&sb, "Region: %s\nPower: %d\nOwned: %d\n", top.Region, top.Power, owned)
		if top.Featured {
			sb.WriteString("✨ Currently featured\n")
		}
		if !top.Active {
			sb.WriteString("🚫 Not in the roll pool\n")
		}
		if len(matches) > 1 {
			sb.WriteString("\n**Close matches**\n")
			for _, m := range matches[1:] {
				fmt.Fprintf(&sb, "• #%04d %s %s\n", m.ID, m.Name, rarityStars(m.Rarity))
			}
		}

		now := time.Now()
		embed := discord.Embed{
			Title:       "🔍 Pokédex",
			Description: sb.String(),
			Color:       infoColor,
			Footer: &discord.EmbedFooter{
				Text: fmt.Sprintf("Requested by %s", e.User().Username),
			},
			Timestamp: &now,
		}
		if b.SpriteService != nil {
			embed.Image = &discord.EmbedResource{URL: b.SpriteService.SpriteURL(top)}
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}

func PokedexAutocompleteHandler(b *senpaibot.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		focused := e.Data.Focused()
		if focused.Name != "query" {
			return nil
		}

		query := ""
		if focused.Value != nil {
			var s string
			if err := json.Unmarshal(focused.Value, &s); err != nil {
				slog.Error("Failed to unmarshal autocomplete value",
					slog.String("error", err.Error()))
				return e.AutocompleteResult([]discord.AutocompleteChoice{})
			}
			query = strings.TrimSpace(s)
		}
		if query == "" {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		matches, err := b.PokedexSearch.Search(ctx, query, 25)
		if err != nil {
			slog.Error("Pokedex autocomplete lookup failed",
				slog.String("error", err.Error()),
				slog.String("query", query))
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}

		choices := make([]discord.AutocompleteChoice, 0, len(matches))
		for _, m := range matches {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  fmt.Sprintf("#%04d %s", m.ID, m.Name),
				Value: m.Name,
			})
		}
		return e.AutocompleteResult(choices)
	}
}
