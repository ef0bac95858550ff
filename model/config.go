package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Size       int     `yaml:"size" toml:"size"`
	Scale      int     `yaml:"scale" toml:"scale"`
	WallSeeds  int     `yaml:"wall_seeds" toml:"wall_seeds"`
	WallGrowth float64 `yaml:"wall_growth" toml:"wall_growth"`
	Agents     int     `yaml:"agents" toml:"agents"`
	RetryLimit int     `yaml:"retry_limit" toml:"retry_limit"`
	// MaxSamples caps rejection sampling in FindEmpty; 0 means 10 draws per cell.
	MaxSamples           int  `yaml:"max_samples" toml:"max_samples"`
	ResetStallOnRetarget bool `yaml:"reset_stall_on_retarget" toml:"reset_stall_on_retarget"`
	// Seed of 0 picks a time based seed.
	Seed       int64  `yaml:"seed" toml:"seed"`
	TickMillis int    `yaml:"tick_millis" toml:"tick_millis"`
	LogLevel   string `yaml:"log_level" toml:"log_level"`

	EmptyColor  Color `yaml:"empty_color" toml:"empty_color"`
	WallColor   Color `yaml:"wall_color" toml:"wall_color"`
	ShadowColor Color `yaml:"shadow_color" toml:"shadow_color"`
}

func DefaultConfig() Config {
	return Config{
		Size:        100,
		Scale:       10,
		WallSeeds:   100,
		WallGrowth:  0.48,
		Agents:      300,
		RetryLimit:  10,
		TickMillis:  50,
		LogLevel:    "info",
		EmptyColor:  Color{0.5, 0.3, 0.4, 1},
		WallColor:   Color{0.2, 0.1, 0.2, 1},
		ShadowColor: Color{0, 0, 0, 0.45},
	}
}

func (c Config) Samples() int {
	if c.MaxSamples > 0 {
		return c.MaxSamples
	}
	return 10 * c.Size * c.Size
}

func (c Config) TickInterval() time.Duration {
	if c.TickMillis <= 0 {
		return time.Millisecond
	}
	return time.Duration(c.TickMillis) * time.Millisecond
}

func (c Config) Validate() error {
	switch {
	case c.Size < 2:
		return fmt.Errorf("%w: size %d below 2", ErrInvalidConfig, c.Size)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale %d must be positive", ErrInvalidConfig, c.Scale)
	case c.WallSeeds < 0 || c.Agents < 0:
		return fmt.Errorf("%w: negative wall or agent count", ErrInvalidConfig)
	case c.WallGrowth < 0 || c.WallGrowth > 0.5:
		return fmt.Errorf("%w: wall growth %v outside [0,0.5]", ErrInvalidConfig, c.WallGrowth)
	case c.RetryLimit < 0:
		return fmt.Errorf("%w: retry limit %d is negative", ErrInvalidConfig, c.RetryLimit)
	case c.MaxSamples < 0:
		return fmt.Errorf("%w: max samples %d is negative", ErrInvalidConfig, c.MaxSamples)
	case c.WallSeeds+2*c.Agents >= c.Size*c.Size:
		return fmt.Errorf("%w: %d walls and %d agents do not fit %d cells",
			ErrInvalidConfig, c.WallSeeds, c.Agents, c.Size*c.Size)
	}
	return nil
}
