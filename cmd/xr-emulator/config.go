package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// config is the emulator command configuration, read from OXY_EMU_* variables.
type config struct {
	Width     int          `env:"WIDTH" envDefault:"1600"`
	Height    int          `env:"HEIGHT" envDefault:"800"`
	FrameRate float64      `env:"FRAME_RATE" envDefault:"72"`
	MoveSpeed float32      `env:"MOVE_SPEED" envDefault:"1.5"`
	Hands     bool         `env:"HANDS" envDefault:"false"`
	Inline    bool         `env:"INLINE" envDefault:"true"`
	VSync     bool         `env:"VSYNC" envDefault:"false"`
	Profile   bool         `env:"PROFILE" envDefault:"false"`
	LogLevel  logrus.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (config, error) {
	var c config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: "OXY_EMU_"}); err != nil {
		return c, fmt.Errorf("failed to parse emulator config: %w", err)
	}
	if c.FrameRate <= 0 {
		return c, fmt.Errorf("frame rate must be positive, got %v", c.FrameRate)
	}
	return c, nil
}

func (c config) frameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}
