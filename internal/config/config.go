// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Rule struct {
	Tag    string   `yaml:"tag" json:"tag"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Penalty struct {
	Reason string   `yaml:"reason" json:"reason"`
	Weight int      `yaml:"weight" json:"weight"`
	Any    []string `yaml:"any" json:"any"`
}

type Strategy struct {
	Prefix     string `yaml:"prefix" json:"prefix"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Server struct {
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
		RateLimitBurst  int     `yaml:"rate_limit_burst" json:"rate_limit_burst"`
	} `yaml:"server" json:"server"`

	Cache struct {
		DefaultTTLSeconds      int        `yaml:"default_ttl_seconds" json:"default_ttl_seconds"`
		CleanupIntervalSeconds int        `yaml:"cleanup_interval_seconds" json:"cleanup_interval_seconds"`
		WarmOnStart            bool       `yaml:"warm_on_start" json:"warm_on_start"`
		WarmIntervalSeconds    int        `yaml:"warm_interval_seconds" json:"warm_interval_seconds"`
		Strategies             []Strategy `yaml:"strategies" json:"strategies"`
	} `yaml:"cache" json:"cache"`

	Intake struct {
		Enabled          bool     `yaml:"enabled" json:"enabled"`
		IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
		IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
		Username         string   `yaml:"username" json:"username"`
		Mailbox          string   `yaml:"mailbox" json:"mailbox"`
		SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
		PollSeconds      int      `yaml:"poll_seconds" json:"poll_seconds"`
		MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
		DefaultJobID     int64    `yaml:"default_job_id" json:"default_job_id"`
	} `yaml:"intake" json:"intake"`

	Scoring struct {
		NotifyMinScore    int            `yaml:"notify_min_score" json:"notify_min_score"`
		ExperiencePerYear int            `yaml:"experience_per_year" json:"experience_per_year"`
		ExperienceCap     int            `yaml:"experience_cap" json:"experience_cap"`
		EducationWeights  map[string]int `yaml:"education_weights" json:"education_weights"`
		CoverLetterBonus  int            `yaml:"cover_letter_bonus" json:"cover_letter_bonus"`
		PortfolioBonus    int            `yaml:"portfolio_bonus" json:"portfolio_bonus"`
		SkillRules        []Rule         `yaml:"skill_rules" json:"skill_rules"`
		Penalties         []Penalty      `yaml:"penalties" json:"penalties"`
	} `yaml:"scoring" json:"scoring"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) CacheDefaultTTL() time.Duration {
	if c.Cache.DefaultTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Cache.DefaultTTLSeconds) * time.Second
}

func (c Config) CacheCleanupInterval() time.Duration {
	if c.Cache.CleanupIntervalSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.Cache.CleanupIntervalSeconds) * time.Second
}
