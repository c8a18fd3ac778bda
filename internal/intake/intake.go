// Package intake imports job applications from an IMAP mailbox: unseen
// messages whose subject matches the configured filter become candidates and
// applications.
package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/emersion/go-imap/v2"

	"talentsol-engine/internal/config"
	"talentsol-engine/internal/domain"
	"talentsol-engine/internal/rank"
	"talentsol-engine/internal/store"
)

// RunOnce polls the mailbox and imports matching messages. Candidates are
// deduped by email address; messages are deduped by Message-Id and marked
// \Seen only after a successful import. onImported fires per new application.
func RunOnce(ctx context.Context, db *sql.DB, cfg config.Config, password string, scorer rank.Scorer, onImported func(appID int64)) (added int, err error) {
	if !cfg.Intake.Enabled {
		return 0, nil
	}
	if cfg.Intake.IMAPHost == "" || cfg.Intake.Username == "" {
		return 0, errors.New("intake enabled but missing imap_host/username")
	}
	if cfg.Intake.DefaultJobID <= 0 {
		return 0, errors.New("intake enabled but intake.default_job_id is not set")
	}

	// The target job must exist and be open.
	job, err := store.GetJob(ctx, db, cfg.Intake.DefaultJobID)
	if err != nil {
		return 0, fmt.Errorf("intake job %d: %w", cfg.Intake.DefaultJobID, err)
	}
	if job.Status != "open" {
		return 0, fmt.Errorf("intake job %d is %s, not open", job.ID, job.Status)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Intake.IMAPHost, cfg.Intake.IMAPPort)
	c, err := DialAndLogin(ctx, addr, cfg.Intake.Username, password)
	if err != nil {
		return 0, err
	}
	defer LogoutAndClose(c)

	if err := SelectMailbox(c, cfg.Intake.Mailbox); err != nil {
		return 0, err
	}

	msgs, err := FetchUnseen(ctx, c, cfg.Intake.MaxMessages)
	if err != nil {
		return 0, err
	}

	var imported []imap.UID

	for _, m := range msgs {
		if !SubjectMatches(m.Subject, cfg.Intake.SearchSubjectAny) {
			continue
		}

		profile, messageID, ok := ParseMessage(m, cfg)
		if !ok {
			log.Printf("level=warn msg=\"intake skip\" uid=%d reason=\"no sender address\"", m.UID)
			continue
		}

		if messageID != "" {
			fresh, err := store.MarkIntakeMessage(ctx, db, messageID)
			if err != nil {
				return added, err
			}
			if !fresh {
				imported = append(imported, m.UID) // already imported once; just flag it
				continue
			}
		}

		appID, err := importApplication(ctx, db, job.ID, profile, scorer)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				// candidate already applied to this job
				imported = append(imported, m.UID)
				continue
			}
			return added, err
		}

		added++
		imported = append(imported, m.UID)
		if onImported != nil {
			onImported(appID)
		}
	}

	if err := MarkSeen(c, imported); err != nil {
		log.Printf("level=warn msg=\"intake mark seen\" err=%v", err)
	}

	return added, nil
}

func importApplication(ctx context.Context, db *sql.DB, jobID int64, p domain.CandidateProfile, scorer rank.Scorer) (int64, error) {
	cand, err := store.GetCandidateByEmail(ctx, db, p.Email)
	if errors.Is(err, store.ErrNotFound) {
		cand, err = store.CreateCandidate(ctx, db, store.Candidate{
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			Email:           p.Email,
			Phone:           p.Phone,
			Location:        p.Location,
			Skills:          p.Skills,
			YearsExperience: p.YearsExperience,
			EducationLevel:  p.EducationLevel,
			Source:          "email",
		})
	}
	if err != nil {
		return 0, err
	}

	score, tags := 0, []string{}
	if scorer != nil {
		score, tags = scorer.Score(p)
	}

	app, err := store.CreateApplication(ctx, db, store.Application{
		CandidateID: cand.ID,
		JobID:       jobID,
		Score:       score,
		Tags:        tags,
		Source:      "email",
	})
	if err != nil {
		return 0, err
	}
	return app.ID, nil
}
