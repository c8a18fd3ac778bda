package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"talentsol-engine/internal/domain"
)

type SeedResult struct {
	Candidates   int `json:"candidates"`
	Jobs         int `json:"jobs"`
	Applications int `json:"applications"`
	Interviews   int `json:"interviews"`
	Hired        int `json:"hired"`
}

var seedTitles = []string{
	"Backend Engineer", "Frontend Engineer", "Platform Engineer",
	"Data Engineer", "Engineering Manager", "Product Designer",
	"Technical Recruiter", "QA Engineer",
}

var seedSkills = []string{
	"go", "python", "typescript", "react", "postgres", "kubernetes",
	"terraform", "aws", "docker", "sql", "etl", "machine learning",
}

var seedSources = []string{"form", "email", "referral", "sourced"}

var seedEducation = []string{"high_school", "bachelor", "bachelor", "master", "phd"}

// SeedDemoData populates the store with plausible fake data: jobs, candidates,
// applications spread across the pipeline with backdated submissions, a slice
// of hires with hired_at set (so time-to-hire is non-empty), and interviews
// landing inside the current week.
func SeedDemoData(ctx context.Context, db *sql.DB, nCandidates int) (SeedResult, error) {
	if nCandidates <= 0 {
		nCandidates = 50
	}
	if nCandidates > 5000 {
		nCandidates = 5000
	}

	var res SeedResult
	now := time.Now().UTC()

	// Jobs first so applications have something to point at.
	var jobIDs []int64
	for _, title := range seedTitles {
		j, err := CreateJob(ctx, db, Job{
			Title:      title,
			Department: gofakeit.RandomString([]string{"Engineering", "Design", "Data", "People"}),
			Location:   gofakeit.City() + ", " + gofakeit.StateAbr(),
			WorkMode:   gofakeit.RandomString([]string{"remote", "hybrid", "onsite"}),
			Description: fmt.Sprintf("We are hiring a %s. Experience with %s and %s preferred.",
				title, gofakeit.RandomString(seedSkills), gofakeit.RandomString(seedSkills)),
		})
		if err != nil {
			return res, err
		}
		jobIDs = append(jobIDs, j.ID)
		res.Jobs++
	}

	for i := 0; i < nCandidates; i++ {
		nSkills := gofakeit.Number(2, 6)
		skills := make([]string, 0, nSkills)
		for len(skills) < nSkills {
			s := gofakeit.RandomString(seedSkills)
			dup := false
			for _, have := range skills {
				if have == s {
					dup = true
					break
				}
			}
			if !dup {
				skills = append(skills, s)
			}
		}

		c, err := CreateCandidate(ctx, db, Candidate{
			FirstName:       gofakeit.FirstName(),
			LastName:        gofakeit.LastName(),
			Email:           fmt.Sprintf("%s.%d@%s", strings.ToLower(gofakeit.Username()), i, gofakeit.DomainName()),
			Phone:           gofakeit.Phone(),
			Location:        gofakeit.City() + ", " + gofakeit.StateAbr(),
			Skills:          skills,
			YearsExperience: gofakeit.Number(0, 15),
			EducationLevel:  gofakeit.RandomString(seedEducation),
			Source:          gofakeit.RandomString(seedSources),
		})
		if err != nil {
			return res, err
		}
		res.Candidates++

		// Most candidates apply to one job, some to two.
		nApps := 1
		if gofakeit.Number(0, 4) == 0 {
			nApps = 2
		}
		for a := 0; a < nApps && a < len(jobIDs); a++ {
			jobID := jobIDs[(i+a)%len(jobIDs)]
			submitted := now.AddDate(0, 0, -gofakeit.Number(0, 60))

			status := gofakeit.RandomString(domain.Statuses())
			app, err := CreateApplication(ctx, db, Application{
				CandidateID: c.ID,
				JobID:       jobID,
				Score:       gofakeit.Number(10, 95),
				Source:      c.Source,
				SubmittedAt: submitted.Format(time.RFC3339),
			})
			if err != nil {
				return res, err
			}
			res.Applications++

			if status != domain.StatusApplied {
				if err := forceStatus(ctx, db, app.ID, status, submitted); err != nil {
					return res, err
				}
				if status == domain.StatusHired {
					res.Hired++
				}
			}

			// Interview-stage (and later) applications get an interview this
			// week so the dashboard metric has data.
			if status == domain.StatusInterview || status == domain.StatusOffer || status == domain.StatusHired {
				sched := startOfWeek(now).
					AddDate(0, 0, gofakeit.Number(0, 4)).
					Add(time.Duration(gofakeit.Number(9, 16)) * time.Hour)
				_, err := CreateInterview(ctx, db, Interview{
					ApplicationID: app.ID,
					Kind:          gofakeit.RandomString([]string{"phone", "technical", "onsite", "final"}),
					Interviewer:   gofakeit.Name(),
					ScheduledAt:   sched.Format(time.RFC3339),
				})
				if err != nil {
					return res, err
				}
				res.Interviews++
			}
		}
	}

	return res, nil
}

// startOfWeek returns midnight UTC on the Monday of t's week. strftime('%W')
// weeks start on Monday, so Go's Sunday=0 weekday needs remapping; otherwise
// a Sunday run would land seeded interviews in next week's bucket.
func startOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7)).Truncate(24 * time.Hour)
}

// forceStatus writes a pipeline state directly, bypassing transition checks.
// Seeding backfills history; hired rows get hired_at a few days after submit.
func forceStatus(ctx context.Context, db *sql.DB, appID int64, status string, submitted time.Time) error {
	var hiredAt any
	if status == domain.StatusHired {
		hiredAt = submitted.AddDate(0, 0, gofakeit.Number(7, 35)).Format(time.RFC3339)
	}
	_, err := db.ExecContext(ctx, `
UPDATE applications SET status=?, hired_at=?, updated_at=? WHERE id=?;`,
		status, hiredAt, time.Now().UTC().Format(time.RFC3339), appID)
	return err
}
