package senpaibot

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.Gacha.applyDefaults()
	return &cfg, nil
}

type Config struct {
	Log    LogConfig   `toml:"log"`
	Bot    BotConfig   `toml:"bot"`
	DB     DBConfig    `toml:"db"`
	Gacha  GachaConfig `toml:"gacha"`
	Spaces struct {
		Key        string `toml:"key"`
		Secret     string `toml:"secret"`
		Region     string `toml:"region"`
		Bucket     string `toml:"bucket"`
		SpriteRoot string `toml:"sprite_root"`
	} `toml:"spaces"`
	Legacy struct {
		MongoURI string `toml:"mongo_uri"`
		Database string `toml:"database"`
	} `toml:"legacy"`
}

type BotConfig struct {
	DevGuilds   []snowflake.ID `toml:"dev_guilds"`
	Token       string         `toml:"token"`
	AdminIDs    []snowflake.ID `toml:"admin_ids"`
	QuizChannel snowflake.ID   `toml:"quiz_channel"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// GachaConfig carries the tunable economy numbers. Everything has a default so
// an empty [gacha] table behaves like production.
type GachaConfig struct {
	RollCost          int64 `toml:"roll_cost"`
	MinBalance        int64 `toml:"min_balance"`
	JackpotPerRoll    int64 `toml:"jackpot_per_roll"`
	JackpotThreshold  int64 `toml:"jackpot_threshold"`
	FavoriteLimit     int   `toml:"favorite_limit"`
	TradeRatePerTier  int64 `toml:"trade_rate_per_tier"`
	TeamSwitchCost    int64 `toml:"team_switch_cost"`
	VoiceIntervalSecs int64 `toml:"voice_interval_secs"`
	VoiceReward       int64 `toml:"voice_reward"`
}

func (c *GachaConfig) applyDefaults() {
	if c.RollCost == 0 {
		c.RollCost = 30
	}
	if c.MinBalance == 0 {
		c.MinBalance = -100
	}
	if c.JackpotPerRoll == 0 {
		c.JackpotPerRoll = 1
	}
	if c.JackpotThreshold == 0 {
		c.JackpotThreshold = 3
	}
	if c.FavoriteLimit == 0 {
		c.FavoriteLimit = 6
	}
	if c.TradeRatePerTier == 0 {
		c.TradeRatePerTier = 60
	}
	if c.TeamSwitchCost == 0 {
		c.TeamSwitchCost = 500
	}
	if c.VoiceIntervalSecs == 0 {
		c.VoiceIntervalSecs = 600
	}
	if c.VoiceReward == 0 {
		c.VoiceReward = 10
	}
}
