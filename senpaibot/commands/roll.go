package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/gacha"
)

const maxRollCount = 100

var Roll = discord.SlashCommandCreate{
	Name:        "roll",
	Description: "🎲 Roll the gacha for a Pokémon",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "count",
			Description: "How many rolls (default 1)",
			MinValue:    ptr(1),
			MaxValue:    ptr(maxRollCount),
		},
		discord.ApplicationCommandOptionString{
			Name:        "region",
			Description: "Limit the pool to one region",
			Choices:     regionChoices(),
		},
	},
}

func regionChoices() []discord.ApplicationCommandOptionChoiceString {
	var choices []discord.ApplicationCommandOptionChoiceString
	for _, region := range models.Regions() {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  region,
			Value: region,
		})
	}
	return choices
}

func RollHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		count, ok := data.OptInt("count")
		if !ok {
			count = 1
		}
		region := data.String("region")

		userID := e.User().ID.String()
		if !b.SessionManager.Lock(userID) {
			return errorMessage(e, "You already have a roll in progress")
		}
		defer b.SessionManager.Release(userID)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if _, err := b.TrainerRepository.GetOrCreate(ctx, userID); err != nil {
			return errorMessage(e, "Failed to load your trainer profile")
		}

		if err := e.DeferCreateMessage(false); err != nil {
			return err
		}

		if count == 1 {
			result, err := b.GachaEngine.Roll(ctx, userID, region)
			if err != nil {
				return updateErrorMessage(e, rollErrorText(err))
			}
			return respondSingleRoll(b, e, ctx, result)
		}

		multi, err := b.GachaEngine.MultiRoll(ctx, userID, count, region)
		if err != nil && len(multi.Results) == 0 {
			return updateErrorMessage(e, rollErrorText(err))
		}
		return respondMultiRoll(b, e, ctx, multi, err)
	}
}

func rollErrorText(err error) string {
	switch {
	case errors.Is(err, gacha.ErrInsufficientBalance):
		return "You don't have enough points to roll"
	case errors.Is(err, gacha.ErrNoCandidates):
		return "No Pokémon available for that pool right now"
	default:
		return "The roll failed. Please try again later."
	}
}

func respondSingleRoll(b *senpaibot.Bot, e *handler.CommandEvent, ctx context.Context, result *gacha.Result) error {
	jackpotNote := settleJackpot(b, ctx, []gacha.Result{*result})

	description := fmt.Sprintf("You caught **%s**!\n%s\nPower: %d\nBalance: %d points",
		result.Pokemon.Name, rarityStars(result.Rarity), result.Pokemon.Power, result.NewBalance)
	if result.Focus {
		description += "\n✨ Featured pull!"
	}
	description += jackpotNote

	color := infoColor
	if result.Rarity >= models.RarityShiny {
		color = goldColor
	}

	now := time.Now()
	embed := discord.Embed{
		Title:       "🎲 Roll",
		Description: description,
		Color:       color,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Requested by %s", e.User().Username),
		},
		Timestamp: &now,
	}
	if b.SpriteService != nil {
		embed.Image = &discord.EmbedResource{URL: b.SpriteService.SpriteURL(result.Pokemon)}
	}

	embeds := []discord.Embed{embed}
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &embeds})
	return err
}

func respondMultiRoll(b *senpaibot.Bot, e *handler.CommandEvent, ctx context.Context, multi *gacha.MultiResult, rollErr error) error {
	jackpotNote := settleJackpot(b, ctx, multi.Results)

	byRarity := make(map[int]int)
	var best []gacha.Result
	for _, r := range multi.Results {
		byRarity[r.Rarity]++
		if r.Rarity >= models.RarityShiny {
			best = append(best, r)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Rolled **%d** times\n\n", len(multi.Results))
	for rarity := models.RarityMax; rarity >= models.RarityMin; rarity-- {
		if n := byRarity[rarity]; n > 0 {
			fmt.Fprintf(&sb, "%s × %d\n", rarityStars(rarity), n)
		}
	}
	if len(best) > 0 {
		sb.WriteString("\n**Top pulls**\n")
		for _, r := range best {
			fmt.Fprintf(&sb, "• %s %s\n", r.Pokemon.Name, rarityStars(r.Rarity))
		}
	}
	if multi.Bricked {
		sb.WriteString("\n🧱 **Brick!** Not a single shiny in the whole batch.")
	}
	if rollErr != nil {
		fmt.Fprintf(&sb, "\n⚠️ Stopped early: %s", rollErrorText(rollErr))
	}
	if len(multi.Results) > 0 {
		fmt.Fprintf(&sb, "\nBalance: %d points", multi.Results[len(multi.Results)-1].NewBalance)
	}
	sb.WriteString(jackpotNote)

	color := infoColor
	if len(best) > 0 {
		color = goldColor
	}

	now := time.Now()
	embeds := []discord.Embed{{
		Title:       "🎲 Multi Roll",
		Description: sb.String(),
		Color:       color,
		Footer: &discord.EmbedFooter{
			Text: fmt.Sprintf("Requested by %s", e.User().Username),
		},
		Timestamp: &now,
	}}
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &embeds})
	return err
}

// settleJackpot pays out the pool when any result hit a jackpot tier and
// returns a display note. A payout failure only loses the announcement, the
// pool stays intact for the next trigger.
func settleJackpot(b *senpaibot.Bot, ctx context.Context, results []gacha.Result) string {
	trigger := 0
	for _, r := range results {
		if r.Rarity >= models.RarityShiny && r.Rarity > trigger {
			trigger = r.Rarity
		}
	}
	if trigger == 0 {
		return ""
	}

	payout, err := b.JackpotPool.ProcessPayout(ctx, trigger)
	if err != nil {
		return ""
	}
	if len(payout.Payouts) == 0 {
		return "\n\n🎰 The jackpot pool reset with no eligible trainers."
	}
	return fmt.Sprintf("\n\n🎰 **Jackpot!** %d points split between %d trainers (×%d multiplier).",
		payout.Total*payout.Multiplier, len(payout.Payouts), payout.Multiplier)
}
