package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// StakeTier pairs a named stake level with the gold awarded to each member of
// the winning team.
type StakeTier struct {
	ID     string `json:"id"`
	Reward int64  `json:"reward"`
}

// GameConfig holds the tunable room timings and rewards.
type GameConfig struct {
	// DealDelaySeconds is the settle delay between dealing hands and opening
	// the auction.
	DealDelaySeconds int `json:"deal_delay_seconds"`
	// RoundEndDelaySeconds is the pause after settlement before the next deal.
	RoundEndDelaySeconds int `json:"round_end_delay_seconds"`

	DefaultTier string      `json:"default_tier"`
	Tiers       []StakeTier `json:"tiers"`

	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	BotMinDelaySeconds      int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds      int `json:"bot_max_delay_seconds"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// DealDelaySeconds returns the configured deal settle delay.
func DealDelaySeconds() int {
	if cfg == nil || cfg.DealDelaySeconds <= 0 {
		return 3
	}
	return cfg.DealDelaySeconds
}

// RoundEndDelaySeconds returns the configured round-end pause.
func RoundEndDelaySeconds() int {
	if cfg == nil || cfg.RoundEndDelaySeconds <= 0 {
		return 3
	}
	return cfg.RoundEndDelaySeconds
}

// BotAutoFillDelaySeconds returns how long a solo human waits before bots
// fill the remaining seats.
func BotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 10
	}
	return cfg.BotAutoFillDelaySeconds
}

// BotDelayBounds returns the min and max seconds a bot waits before acting.
func BotDelayBounds() (min, max int) {
	min, max = 1, 3
	if cfg != nil && cfg.BotMinDelaySeconds > 0 {
		min = cfg.BotMinDelaySeconds
	}
	if cfg != nil && cfg.BotMaxDelaySeconds >= min {
		max = cfg.BotMaxDelaySeconds
	}
	if max < min {
		max = min
	}
	return min, max
}

// GetReward returns the winning-team reward for a tier ID, falling back to
// the default tier and then to a safe constant.
func GetReward(tierID string) int64 {
	if cfg == nil {
		return 100
	}

	target := tierID
	if target == "" {
		target = cfg.DefaultTier
	}

	for _, tier := range cfg.Tiers {
		if tier.ID == target {
			return tier.Reward
		}
	}
	for _, tier := range cfg.Tiers {
		if tier.ID == cfg.DefaultTier {
			return tier.Reward
		}
	}
	return 100
}
