package domain

// Application pipeline statuses, in order.
const (
	StatusApplied   = "applied"
	StatusScreening = "screening"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusHired     = "hired"
	StatusRejected  = "rejected"
)

var statusOrder = []string{
	StatusApplied, StatusScreening, StatusInterview, StatusOffer, StatusHired, StatusRejected,
}

// transitions: forward one stage at a time, reject from anywhere active.
var transitions = map[string][]string{
	StatusApplied:   {StatusScreening, StatusRejected},
	StatusScreening: {StatusInterview, StatusRejected},
	StatusInterview: {StatusOffer, StatusRejected},
	StatusOffer:     {StatusHired, StatusRejected},
	StatusHired:     {},
	StatusRejected:  {},
}

func ValidStatus(s string) bool {
	for _, v := range statusOrder {
		if v == s {
			return true
		}
	}
	return false
}

func Statuses() []string {
	out := make([]string, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ValidTransition reports whether an application may move from -> to.
func ValidTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether status ends the pipeline.
func Terminal(s string) bool {
	return s == StatusHired || s == StatusRejected
}
