package domain

// CandidateProfile is the scoring/intake view of a candidate: everything the
// ranker needs, independent of how the row is stored.
type CandidateProfile struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Location        string
	Skills          []string
	YearsExperience int
	EducationLevel  string // high_school/bachelor/master/phd/unknown
	ResumeText      string
	CoverLetter     bool
	PortfolioURL    string
	Source          string // form/email/referral/sourced
}

func (c CandidateProfile) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
