package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentsol-engine/internal/domain"
)

func TestDashboardCounts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j := mustJob(t, db, Job{Title: "Backend Engineer"})
	closed := mustJob(t, db, Job{Title: "Old Role", Status: "closed"})
	_ = closed

	c1 := mustCandidate(t, db, Candidate{Email: "d1@example.com"})
	c2 := mustCandidate(t, db, Candidate{Email: "d2@example.com"})
	c3 := mustCandidate(t, db, Candidate{Email: "d3@example.com"})

	a1 := mustApplication(t, db, Application{CandidateID: c1.ID, JobID: j.ID})
	mustApplication(t, db, Application{CandidateID: c2.ID, JobID: j.ID})
	a3 := mustApplication(t, db, Application{CandidateID: c3.ID, JobID: j.ID})

	// walk a1 all the way to hired
	for _, next := range []string{
		domain.StatusScreening, domain.StatusInterview, domain.StatusOffer, domain.StatusHired,
	} {
		_, err := TransitionApplication(ctx, db, a1.ID, next)
		require.NoError(t, err)
	}
	_, err := TransitionApplication(ctx, db, a3.ID, domain.StatusRejected)
	require.NoError(t, err)

	s, err := Dashboard(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalCandidates)
	assert.Equal(t, 2, s.TotalJobs)
	assert.Equal(t, 1, s.OpenJobs)
	assert.Equal(t, 3, s.TotalApplications)
	assert.Equal(t, 1, s.ActiveApplications, "hired and rejected are not active")
	assert.Equal(t, 1, s.HiredCount)
	assert.InDelta(t, 1.0/3.0, s.ConversionRate, 0.001)
}

func TestPipelineZeroFillsEveryStage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c, j := seedPair(t, db)
	mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})

	counts, err := Pipeline(ctx, db)
	require.NoError(t, err)
	require.Len(t, counts, len(domain.Statuses()), "every stage present even when empty")

	byStatus := map[string]int{}
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Count
	}
	assert.Equal(t, 1, byStatus[domain.StatusApplied])
	assert.Equal(t, 0, byStatus[domain.StatusHired])
}

func TestApplicationsOverTimeBucketsByDay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j := mustJob(t, db, Job{Title: "SRE"})
	today := time.Now().UTC().Format("2006-01-02")

	for i := 0; i < 3; i++ {
		c := mustCandidate(t, db, Candidate{Email: fmt.Sprintf("t%d@example.com", i)})
		mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})
	}
	// one outside the window
	old := mustCandidate(t, db, Candidate{Email: "old@example.com"})
	mustApplication(t, db, Application{
		CandidateID: old.ID, JobID: j.ID,
		SubmittedAt: time.Now().UTC().AddDate(0, 0, -90).Format(time.RFC3339),
	})

	buckets, err := ApplicationsOverTime(ctx, db, 30)
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, today, buckets[0].Day)
	assert.Equal(t, 3, buckets[0].Count)
}

func TestTimeToHireStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j := mustJob(t, db, Job{Title: "Data Engineer"})
	now := time.Now().UTC()

	hire := func(email string, daysAgoSubmitted, daysToHire int) {
		c := mustCandidate(t, db, Candidate{Email: email})
		submitted := now.AddDate(0, 0, -daysAgoSubmitted)
		a := mustApplication(t, db, Application{
			CandidateID: c.ID, JobID: j.ID,
			SubmittedAt: submitted.Format(time.RFC3339),
		})
		_, err := db.ExecContext(ctx, `UPDATE applications SET status='hired', hired_at=? WHERE id=?;`,
			submitted.AddDate(0, 0, daysToHire).Format(time.RFC3339), a.ID)
		require.NoError(t, err)
	}

	hire("h1@example.com", 40, 10)
	hire("h2@example.com", 50, 30)

	stats, err := TimeToHireStats(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.HiredCount)
	assert.InDelta(t, 20, stats.AvgDays, 0.1)
	assert.InDelta(t, 10, stats.MinDays, 0.1)
	assert.InDelta(t, 30, stats.MaxDays, 0.1)
}

func TestTopCandidatesRanksByScore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	j := mustJob(t, db, Job{Title: "Platform Engineer"})

	add := func(email string, score int) Application {
		c := mustCandidate(t, db, Candidate{Email: email})
		return mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID, Score: score})
	}

	add("low@example.com", 20)
	add("high@example.com", 90)
	add("mid@example.com", 55)
	rej := add("rejected@example.com", 99)
	_, err := TransitionApplication(ctx, db, rej.ID, domain.StatusRejected)
	require.NoError(t, err)

	ranked, err := TopCandidates(ctx, db, j.ID, 10)
	require.NoError(t, err)
	require.Len(t, ranked, 3, "rejected applicants drop out")
	assert.Equal(t, "high@example.com", ranked[0].Email)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "low@example.com", ranked[2].Email)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestSeedDemoDataPopulatesEverything(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := SeedDemoData(ctx, db, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Candidates)
	assert.Greater(t, res.Jobs, 0)
	assert.GreaterOrEqual(t, res.Applications, 30)

	s, err := Dashboard(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 30, s.TotalCandidates)
	assert.Equal(t, res.Applications, s.TotalApplications)
}
