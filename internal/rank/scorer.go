package rank

import "talentsol-engine/internal/domain"

// Scorer turns a candidate profile into a 0..100 priority score plus the tags
// that explain it.
type Scorer interface {
	Score(c domain.CandidateProfile) (score int, tags []string)
}
