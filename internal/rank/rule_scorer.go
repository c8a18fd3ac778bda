// internal/rank/rule_scorer.go
package rank

import (
	"strings"

	"talentsol-engine/internal/config"
	"talentsol-engine/internal/domain"
)

// RuleScorer is the config-driven candidate prioritizer. Structural signals
// (experience, education, cover letter, portfolio) add a base, skill rules
// match against the candidate's skills and resume text, penalties subtract.
// The result is clamped to 0..100.
type RuleScorer struct {
	Cfg config.Config
}

func (s RuleScorer) Score(c domain.CandidateProfile) (int, []string) {
	sc := s.Cfg.Scoring

	score := 0
	var tags []string

	// Experience: weight per year, capped.
	exp := c.YearsExperience * sc.ExperiencePerYear
	if sc.ExperienceCap > 0 && exp > sc.ExperienceCap {
		exp = sc.ExperienceCap
	}
	score += exp

	score += sc.EducationWeights[strings.ToLower(c.EducationLevel)]

	if c.CoverLetter {
		score += sc.CoverLetterBonus
	}
	if strings.TrimSpace(c.PortfolioURL) != "" {
		score += sc.PortfolioBonus
	}

	// Text rules match skills and resume body.
	text := strings.ToLower(strings.Join(c.Skills, " ") + " " + c.ResumeText)

	for _, r := range sc.SkillRules {
		for _, needle := range r.Any {
			if strings.Contains(text, strings.ToLower(needle)) {
				score += r.Weight
				tags = append(tags, r.Tag)
				break
			}
		}
	}

	for _, p := range sc.Penalties {
		for _, needle := range p.Any {
			if strings.Contains(text, strings.ToLower(needle)) {
				score += p.Weight
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, uniq(tags)
}

// PriorityLabel buckets a score for the dashboard.
func PriorityLabel(score int) string {
	switch {
	case score >= 70:
		return "high"
	case score >= 40:
		return "medium"
	default:
		return "low"
	}
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
