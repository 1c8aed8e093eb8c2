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
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/repositories"
	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/pikagacha/balls"
)

var OpenBall = discord.SlashCommandCreate{
	Name:        "openball",
	Description: "⚪ Open a ball for points or a Pokémon",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "tier",
			Description: "Which ball to open",
			Required:    true,
			Choices:     ballChoices(),
		},
		discord.ApplicationCommandOptionBool{
			Name:        "all",
			Description: "Open every ball of this tier",
		},
	},
}

func ballChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, models.BallTierMax)
	for tier := models.BallTierMin; tier <= models.BallTierMax; tier++ {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  models.BallName(tier) + " ball",
			Value: models.BallName(tier),
		})
	}
	return choices
}

func parseBallTier(name string) (int, bool) {
	for tier := models.BallTierMin; tier <= models.BallTierMax; tier++ {
		if models.BallName(tier) == name {
			return tier, true
		}
	}
	return 0, false
}

func OpenBallHandler(b *senpaibot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		tier, ok := parseBallTier(data.String("tier"))
		if !ok {
			return errorMessage(e, "Unknown ball tier")
		}
		openAll := data.Bool("all")

		userID := e.User().ID.String()
		if !b.SessionManager.Lock(userID) {
			return errorMessage(e, "You already have a session in progress")
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

		var results []*balls.OpenResult
		var openErr error
		if openAll {
			results, openErr = b.BallOpener.OpenAll(ctx, userID, tier)
		} else {
			var result *balls.OpenResult
			result, openErr = b.BallOpener.Open(ctx, userID, tier)
			if result != nil {
				results = append(results, result)
			}
		}

		if len(results) == 0 {
			if openErr == nil || errors.Is(openErr, repositories.ErrNoBalls) {
				return updateErrorMessage(e, fmt.Sprintf("You don't have any %s balls", models.BallName(tier)))
			}
			return updateErrorMessage(e, "Failed to open the ball. Please try again later.")
		}

		var sb strings.Builder
		points := int64(0)
		for _, r := range results {
			if r.Pokemon != nil {
				fmt.Fprintf(&sb, "• Caught **%s** %s (+%d exp)\n", r.Pokemon.Name, rarityStars(r.Rarity), r.Exp)
			} else {
				points += r.Points
			}
		}
		if points > 0 {
			fmt.Fprintf(&sb, "• +%d points\n", points)
		}
		if openErr != nil && !errors.Is(openErr, repositories.ErrNoBalls) {
			sb.WriteString("\n⚠️ Stopped early, some balls were not opened.")
		}

		return updateSuccessMessage(e,
			fmt.Sprintf("⚪ Opened %d %s ball(s)", len(results), models.BallName(tier)),
			sb.String(), successColor)
	}
}
