package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"talentsol-engine/internal/config"
	"talentsol-engine/internal/domain"
)

func scoringConfig() config.Config {
	cfg := config.Default()
	cfg.Scoring.SkillRules = []config.Rule{
		{Tag: "Backend", Any: []string{"go", "postgres"}, Weight: 10},
		{Tag: "Infra", Any: []string{"kubernetes", "terraform"}, Weight: 8},
	}
	cfg.Scoring.Penalties = []config.Penalty{
		{Any: []string{"no relocation"}, Weight: -10},
	}
	return cfg
}

func TestScoreExperienceCapped(t *testing.T) {
	s := RuleScorer{Cfg: scoringConfig()}

	// 3 per year, capped at 30
	low, _ := s.Score(domain.CandidateProfile{YearsExperience: 4})
	assert.Equal(t, 12, low)

	capped, _ := s.Score(domain.CandidateProfile{YearsExperience: 25})
	assert.Equal(t, 30, capped)
}

func TestScoreEducationAndBonuses(t *testing.T) {
	s := RuleScorer{Cfg: scoringConfig()}

	score, _ := s.Score(domain.CandidateProfile{
		EducationLevel: "PhD", // case-insensitive lookup
		CoverLetter:    true,
		PortfolioURL:   "https://github.com/someone",
	})
	assert.Equal(t, 15+5+5, score)
}

func TestScoreSkillRulesMatchOncePerRule(t *testing.T) {
	s := RuleScorer{Cfg: scoringConfig()}

	score, tags := s.Score(domain.CandidateProfile{
		Skills:     []string{"Go", "Postgres"}, // both needles, one rule
		ResumeText: "ran Kubernetes clusters",
	})
	assert.Equal(t, 10+8, score)
	assert.Equal(t, []string{"Backend", "Infra"}, tags)
}

func TestScorePenaltiesAndClamp(t *testing.T) {
	s := RuleScorer{Cfg: scoringConfig()}

	score, _ := s.Score(domain.CandidateProfile{ResumeText: "no relocation possible"})
	assert.Equal(t, 0, score, "negative totals clamp to zero")

	rich := domain.CandidateProfile{
		YearsExperience: 30,
		EducationLevel:  "phd",
		CoverLetter:     true,
		PortfolioURL:    "https://example.dev",
		Skills:          []string{"go", "kubernetes"},
	}
	score, _ = s.Score(rich)
	assert.LessOrEqual(t, score, 100)
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "high", PriorityLabel(70))
	assert.Equal(t, "medium", PriorityLabel(40))
	assert.Equal(t, "low", PriorityLabel(39))
	assert.Equal(t, "low", PriorityLabel(0))
}
