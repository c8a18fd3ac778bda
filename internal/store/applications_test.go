package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentsol-engine/internal/domain"
)

func seedPair(t *testing.T, db *sql.DB) (Candidate, Job) {
	t.Helper()
	c := mustCandidate(t, db, Candidate{Email: "pair@example.com"})
	j := mustJob(t, db, Job{Title: "Backend Engineer"})
	return c, j
}

func TestApplicationDefaultsAndDuplicate(t *testing.T) {
	db := openTestDB(t)
	c, j := seedPair(t, db)

	a := mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})
	assert.Equal(t, domain.StatusApplied, a.Status)
	assert.Equal(t, "form", a.Source)
	assert.NotEmpty(t, a.SubmittedAt)

	// one application per candidate+job
	_, err := CreateApplication(context.Background(), db, Application{CandidateID: c.ID, JobID: j.ID})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTransitionWalksThePipeline(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c, j := seedPair(t, db)

	a := mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})

	for _, next := range []string{
		domain.StatusScreening, domain.StatusInterview, domain.StatusOffer, domain.StatusHired,
	} {
		got, err := TransitionApplication(ctx, db, a.ID, next)
		require.NoError(t, err, "to %s", next)
		assert.Equal(t, next, got.Status)
	}

	final, err := GetApplication(ctx, db, a.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, final.HiredAt, "landing on hired stamps hired_at")
}

func TestTransitionRejectsInvalidMoves(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c, j := seedPair(t, db)

	a := mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})

	_, err := TransitionApplication(ctx, db, a.ID, domain.StatusHired)
	assert.ErrorIs(t, err, ErrBadTransition, "no skipping to hired")

	_, err = TransitionApplication(ctx, db, a.ID, "archived")
	assert.ErrorIs(t, err, ErrBadTransition, "unknown status")

	got, err := TransitionApplication(ctx, db, a.ID, domain.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)

	_, err = TransitionApplication(ctx, db, a.ID, domain.StatusApplied)
	assert.ErrorIs(t, err, ErrBadTransition, "terminal states are dead ends")

	_, err = TransitionApplication(ctx, db, 99999, domain.StatusScreening)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateApplicationScore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c, j := seedPair(t, db)

	a := mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})
	require.NoError(t, UpdateApplicationScore(ctx, db, a.ID, 82, []string{"Backend"}))

	got, err := GetApplication(ctx, db, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 82, got.Score)
	assert.Equal(t, []string{"Backend"}, got.Tags)

	assert.ErrorIs(t, UpdateApplicationScore(ctx, db, 99999, 1, nil), ErrNotFound)
}

func TestDeletingCandidateCascadesApplications(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c, j := seedPair(t, db)

	a := mustApplication(t, db, Application{CandidateID: c.ID, JobID: j.ID})
	require.NoError(t, DeleteCandidate(ctx, db, c.ID))

	_, err := GetApplication(ctx, db, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListApplicationsFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c1 := mustCandidate(t, db, Candidate{Email: "one@example.com"})
	c2 := mustCandidate(t, db, Candidate{Email: "two@example.com"})
	j := mustJob(t, db, Job{Title: "SRE"})

	a1 := mustApplication(t, db, Application{CandidateID: c1.ID, JobID: j.ID})
	mustApplication(t, db, Application{CandidateID: c2.ID, JobID: j.ID})

	_, err := TransitionApplication(ctx, db, a1.ID, domain.StatusScreening)
	require.NoError(t, err)

	byCand, total, err := ListApplications(ctx, db, ListApplicationsOpts{CandidateID: c1.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byCand, 1)
	assert.Equal(t, a1.ID, byCand[0].ID)

	byStatus, total, err := ListApplications(ctx, db, ListApplicationsOpts{Status: domain.StatusApplied})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, c2.ID, byStatus[0].CandidateID)

	all, total, err := ListApplications(ctx, db, ListApplicationsOpts{Window: "7d"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

func TestListApplicationsWindowBoundary(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c1 := mustCandidate(t, db, Candidate{Email: "recent@example.com"})
	c2 := mustCandidate(t, db, Candidate{Email: "stale@example.com"})
	j := mustJob(t, db, Job{Title: "Data Engineer"})

	now := time.Now().UTC()
	// Just after midnight on the cutoff's calendar date: past the 24h window,
	// but sharing its date. A format-mismatched string comparison would let
	// this row through.
	cutoff := now.Add(-24 * time.Hour)
	stale := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 1, 0, time.UTC)

	recent := mustApplication(t, db, Application{
		CandidateID: c1.ID, JobID: j.ID,
		SubmittedAt: now.Add(-time.Hour).Format(time.RFC3339),
	})
	mustApplication(t, db, Application{
		CandidateID: c2.ID, JobID: j.ID,
		SubmittedAt: stale.Format(time.RFC3339),
	})

	got, total, err := ListApplications(ctx, db, ListApplicationsOpts{Window: "24h"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)
}
