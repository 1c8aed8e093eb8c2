package migration

import (
	"testing"
	"time"

	"github.com/thesilentflare/SenpaiBot2.0-sub000/senpaibot/database/models"
)

func Test_convertTrainer(t *testing.T) {
	created := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		in    MongoTrainer
		check func(t *testing.T, got *models.Trainer)
	}{
		{
			name: "plain trainer carries over",
			in: MongoTrainer{
				DiscordID:   "100",
				DisplayName: "ash",
				Coins:       250,
				Rank:        "gym_leader",
				RankExp:     120,
				TotalExp:    900,
				Prestige:    1,
				Team:        "red",
				Streak:      3,
				MaxStreak:   12,
				PityThree:   650,
				PityFour:    250,
				PityFive:    60,
				PityFocus:   40,
				Rolls:       400,
				Wins:        10,
				Losses:      4,
				Created:     created,
			},
			check: func(t *testing.T, got *models.Trainer) {
				if got.Balance != 250 || got.Rank != "gym_leader" || got.Team != "red" {
					t.Errorf("core fields = %+v", got)
				}
				if got.PityThree != 650 || got.PityFocus != 40 {
					t.Errorf("pity = (%d, %d, %d, %d)", got.PityThree, got.PityFour, got.PityFive, got.PityFocus)
				}
				if !got.CreatedAt.Equal(created) {
					t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
				}
			},
		},
		{
			name: "negative legacy pity clamps and resets",
			in: MongoTrainer{
				DiscordID: "200",
				PityThree: -40,
				PityFour:  -10,
				PityFive:  90,
				PityFocus: 60,
			},
			check: func(t *testing.T, got *models.Trainer) {
				// Clamped sum falls short of the draw range, so the import
				// resets to baselines.
				if got.PityThree != models.PityBaseThree || got.PityFocus != models.PityBaseFocus {
					t.Errorf("pity = (%d, %d, %d, %d), want baselines",
						got.PityThree, got.PityFour, got.PityFive, got.PityFocus)
				}
			},
		},
		{
			name: "missing fields get defaults",
			in:   MongoTrainer{DiscordID: "300"},
			check: func(t *testing.T, got *models.Trainer) {
				if got.DisplayName != "300" {
					t.Errorf("DisplayName = %q, want discord id placeholder", got.DisplayName)
				}
				if got.Rank != "rookie" {
					t.Errorf("Rank = %q, want rookie", got.Rank)
				}
				if got.CreatedAt.IsZero() {
					t.Error("CreatedAt is zero")
				}
			},
		},
		{
			name: "negative savings clamps to zero",
			in:   MongoTrainer{DiscordID: "400", Savings: -50},
			check: func(t *testing.T, got *models.Trainer) {
				if got.Savings != 0 {
					t.Errorf("Savings = %d, want 0", got.Savings)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, convertTrainer(tt.in))
		})
	}
}

func Test_clampPity(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		baseline int
		want     int
	}{
		{name: "zero means unset, use baseline", value: 0, baseline: 700, want: 700},
		{name: "negative floors at zero", value: -25, baseline: 700, want: 0},
		{name: "positive passes through", value: 455, baseline: 700, want: 455},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampPity(tt.value, tt.baseline); got != tt.want {
				t.Errorf("clampPity(%d, %d) = %d, want %d", tt.value, tt.baseline, got, tt.want)
			}
		})
	}
}
