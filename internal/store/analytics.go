package store

import (
	"context"
	"database/sql"
	"fmt"

	"talentsol-engine/internal/domain"
)

// Aggregate queries behind the analytics endpoints. These are the expensive
// reads the cache layer sits in front of.

type DashboardSummary struct {
	TotalCandidates    int     `json:"totalCandidates"`
	TotalJobs          int     `json:"totalJobs"`
	OpenJobs           int     `json:"openJobs"`
	TotalApplications  int     `json:"totalApplications"`
	ActiveApplications int     `json:"activeApplications"`
	HiredCount         int     `json:"hiredCount"`
	InterviewsThisWeek int     `json:"interviewsThisWeek"`
	AvgTimeToHireDays  float64 `json:"avgTimeToHireDays"`
	ConversionRate     float64 `json:"conversionRate"`
}

type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type RankedCandidate struct {
	CandidateID int64  `json:"candidateId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

func Dashboard(ctx context.Context, db *sql.DB) (DashboardSummary, error) {
	var s DashboardSummary

	row := db.QueryRowContext(ctx, `
SELECT
  (SELECT COUNT(*) FROM candidates),
  (SELECT COUNT(*) FROM jobs),
  (SELECT COUNT(*) FROM jobs WHERE status = 'open'),
  (SELECT COUNT(*) FROM applications),
  (SELECT COUNT(*) FROM applications WHERE status NOT IN ('hired','rejected')),
  (SELECT COUNT(*) FROM applications WHERE status = 'hired'),
  (SELECT COUNT(*) FROM interviews
     WHERE strftime('%Y-%W', scheduled_at) = strftime('%Y-%W', 'now')
       AND status != 'canceled'),
  (SELECT COALESCE(AVG(julianday(hired_at) - julianday(submitted_at)), 0)
     FROM applications WHERE hired_at IS NOT NULL);`)
	if err := row.Scan(&s.TotalCandidates, &s.TotalJobs, &s.OpenJobs,
		&s.TotalApplications, &s.ActiveApplications, &s.HiredCount,
		&s.InterviewsThisWeek, &s.AvgTimeToHireDays); err != nil {
		return DashboardSummary{}, err
	}

	if s.TotalApplications > 0 {
		s.ConversionRate = float64(s.HiredCount) / float64(s.TotalApplications)
	}
	return s, nil
}

// ApplicationsOverTime buckets submissions per day for the last `days` days.
func ApplicationsOverTime(ctx context.Context, db *sql.DB, days int) ([]DayCount, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	rows, err := db.QueryContext(ctx, `
SELECT strftime('%Y-%m-%d', submitted_at) AS day, COUNT(*)
FROM applications
WHERE submitted_at >= strftime('%Y-%m-%dT%H:%M:%SZ','now', ?)
GROUP BY day
ORDER BY day ASC;`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Pipeline returns counts per status, zero-filled in pipeline order so the
// chart never drops an empty stage.
func Pipeline(ctx context.Context, db *sql.DB) ([]StatusCount, error) {
	rows, err := db.QueryContext(ctx, `
SELECT status, COUNT(*) FROM applications GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]StatusCount, 0, len(domain.Statuses()))
	for _, st := range domain.Statuses() {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

func Sources(ctx context.Context, db *sql.DB) ([]SourceCount, error) {
	rows, err := db.QueryContext(ctx, `
SELECT source, COUNT(*)
FROM applications
GROUP BY source
ORDER BY COUNT(*) DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var s SourceCount
		if err := rows.Scan(&s.Source, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type TimeToHire struct {
	AvgDays    float64 `json:"avgDays"`
	MinDays    float64 `json:"minDays"`
	MaxDays    float64 `json:"maxDays"`
	HiredCount int     `json:"hiredCount"`
}

func TimeToHireStats(ctx context.Context, db *sql.DB) (TimeToHire, error) {
	var t TimeToHire
	err := db.QueryRowContext(ctx, `
SELECT
  COALESCE(AVG(julianday(hired_at) - julianday(submitted_at)), 0),
  COALESCE(MIN(julianday(hired_at) - julianday(submitted_at)), 0),
  COALESCE(MAX(julianday(hired_at) - julianday(submitted_at)), 0),
  COUNT(*)
FROM applications
WHERE hired_at IS NOT NULL;`).
		Scan(&t.AvgDays, &t.MinDays, &t.MaxDays, &t.HiredCount)
	return t, err
}

func InterviewsThisWeek(ctx context.Context, db *sql.DB) ([]Interview, error) {
	ivs, _, err := ListInterviews(ctx, db, ListInterviewsOpts{Window: "week", Limit: 200})
	return ivs, err
}

// TopCandidates ranks a job's applicants by score.
func TopCandidates(ctx context.Context, db *sql.DB, jobID int64, limit int) ([]RankedCandidate, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, `
SELECT c.id, c.first_name, c.last_name, c.email, a.score,
       RANK() OVER (ORDER BY a.score DESC) AS rnk
FROM applications a
JOIN candidates c ON c.id = a.candidate_id
WHERE a.job_id = ? AND a.status != 'rejected'
ORDER BY rnk ASC
LIMIT ?;`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RankedCandidate
	for rows.Next() {
		var rc RankedCandidate
		if err := rows.Scan(&rc.CandidateID, &rc.FirstName, &rc.LastName, &rc.Email, &rc.Score, &rc.Rank); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
