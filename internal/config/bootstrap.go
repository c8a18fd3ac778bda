package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Default returns the built-in config used when no default file ships next to
// the binary. Values mirror config/config.yml.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38500
	cfg.App.DataDir = "."

	cfg.Server.RateLimitPerSec = 20
	cfg.Server.RateLimitBurst = 40

	cfg.Cache.DefaultTTLSeconds = 300
	cfg.Cache.CleanupIntervalSeconds = 600
	cfg.Cache.WarmOnStart = true
	cfg.Cache.WarmIntervalSeconds = 600
	cfg.Cache.Strategies = []Strategy{
		{Prefix: "dashboard", TTLSeconds: 300},
		{Prefix: "trend", TTLSeconds: 900},
		{Prefix: "list", TTLSeconds: 60},
	}

	cfg.Intake.Mailbox = "INBOX"
	cfg.Intake.PollSeconds = 120
	cfg.Intake.MaxMessages = 50

	cfg.Scoring.NotifyMinScore = 60
	cfg.Scoring.ExperiencePerYear = 3
	cfg.Scoring.ExperienceCap = 30
	cfg.Scoring.EducationWeights = map[string]int{
		"high_school": 0, "bachelor": 5, "master": 10, "phd": 15,
	}
	cfg.Scoring.CoverLetterBonus = 5
	cfg.Scoring.PortfolioBonus = 5
	return cfg
}

// EnsureUserConfig makes sure dataDir has a config.yml: copies the shipped
// default if present, otherwise writes the built-in Default().
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := SaveAtomic(userPath, Default()); err != nil {
				return "", err
			}
			return userPath, nil
		}
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
