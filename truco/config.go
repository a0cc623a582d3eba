package truco

import (
	"fmt"
	"time"
)

type Config struct {
	// Table
	MaxPlayers int
	MinPlayers int

	// Match
	MatchTarget int // team score that ends the match

	// Pacing of deferred work. Zero values are replaced with defaults.
	TrickRevealDelay time.Duration
	RoundEndDelay    time.Duration
	BotThinkDelay    time.Duration
	BotResponseDelay time.Duration
	HandElevenDelay  time.Duration
	RestartDelay     time.Duration

	// RNG seed (0 => time-based)
	Seed int64
}

// DefaultConfig is the production table shape: up to four seats, first team
// to twelve points.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:  4,
		MinPlayers:  2,
		MatchTarget: 12,
	}
}

func (c *Config) applyDefaults() {
	if c.TrickRevealDelay == 0 {
		c.TrickRevealDelay = defaultTrickRevealDelay
	}
	if c.RoundEndDelay == 0 {
		c.RoundEndDelay = defaultRoundEndDelay
	}
	if c.BotThinkDelay == 0 {
		c.BotThinkDelay = defaultBotThinkDelay
	}
	if c.BotResponseDelay == 0 {
		c.BotResponseDelay = defaultBotResponseDelay
	}
	if c.HandElevenDelay == 0 {
		c.HandElevenDelay = defaultHandElevenDelay
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = defaultRestartDelay
	}
}

func (c Config) validate() error {
	if c.MaxPlayers <= 0 || c.MaxPlayers > 4 {
		return fmt.Errorf("MaxPlayers must be 1..4")
	}
	if c.MinPlayers < 2 {
		return fmt.Errorf("MinPlayers must be >= 2")
	}
	if c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("MinPlayers must be <= MaxPlayers")
	}
	if c.MatchTarget < 2 {
		return fmt.Errorf("MatchTarget must be >= 2")
	}
	if c.TrickRevealDelay < 0 || c.RoundEndDelay < 0 || c.BotThinkDelay < 0 ||
		c.BotResponseDelay < 0 || c.HandElevenDelay < 0 || c.RestartDelay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	return nil
}
