package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"talentsol-engine/internal/domain"
)

type Application struct {
	ID          int64    `json:"id"`
	CandidateID int64    `json:"candidateId"`
	JobID       int64    `json:"jobId"`
	Status      string   `json:"status"`
	Score       int      `json:"score"`
	Tags        []string `json:"tags"`
	Source      string   `json:"source"`
	SubmittedAt string   `json:"submittedAt"`
	UpdatedAt   string   `json:"updatedAt"`
	HiredAt     string   `json:"hiredAt,omitempty"`
}

type ListApplicationsOpts struct {
	CandidateID int64
	JobID       int64
	Status      string
	Window      string // 24h | 7d | 30d | all
	Page        int
	Limit       int
}

const applicationCols = `id, candidate_id, job_id, status, score, tags, source, submitted_at, updated_at, hired_at`

func scanApplication(row interface{ Scan(...any) error }, extra ...any) (Application, error) {
	var a Application
	var tagsJSON string
	var hiredAt sql.NullString
	dest := []any{&a.ID, &a.CandidateID, &a.JobID, &a.Status, &a.Score, &tagsJSON,
		&a.Source, &a.SubmittedAt, &a.UpdatedAt, &hiredAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return Application{}, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &a.Tags)
	a.HiredAt = hiredAt.String
	return a, nil
}

func ListApplications(ctx context.Context, db *sql.DB, opts ListApplicationsOpts) ([]Application, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 25
	}

	var conds []string
	var args []any
	if opts.CandidateID > 0 {
		conds = append(conds, "candidate_id = ?")
		args = append(args, opts.CandidateID)
	}
	if opts.JobID > 0 {
		conds = append(conds, "job_id = ?")
		args = append(args, opts.JobID)
	}
	if opts.Status != "" && opts.Status != "all" {
		conds = append(conds, "status = ?")
		args = append(args, opts.Status)
	}
	// Columns hold RFC 3339 text, so the cutoff must be rendered in the same
	// format; datetime('now') emits a space-separated string that compares
	// wrong against the 'T' separator.
	switch opts.Window {
	case "24h":
		conds = append(conds, "submitted_at >= "+sqlUTCNow("-24 hours"))
	case "7d":
		conds = append(conds, "submitted_at >= "+sqlUTCNow("-7 days"))
	case "30d":
		conds = append(conds, "submitted_at >= "+sqlUTCNow("-30 days"))
	case "", "all":
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
SELECT %s, COUNT(*) OVER() AS total
FROM applications
%s
ORDER BY submitted_at DESC
LIMIT ? OFFSET ?;`, applicationCols, where)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Application
	var total int
	for rows.Next() {
		a, err := scanApplication(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func GetApplication(ctx context.Context, db *sql.DB, id int64) (Application, error) {
	row := db.QueryRowContext(ctx, `SELECT `+applicationCols+` FROM applications WHERE id = ?;`, id)
	a, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return a, err
}

func CreateApplication(ctx context.Context, db *sql.DB, a Application) (Application, error) {
	if a.Status == "" {
		a.Status = domain.StatusApplied
	}
	if !domain.ValidStatus(a.Status) {
		return Application{}, fmt.Errorf("unknown status %q", a.Status)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	if a.Source == "" {
		a.Source = "form"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if a.SubmittedAt == "" {
		a.SubmittedAt = now
	}
	a.UpdatedAt = now
	tagsB, _ := json.Marshal(a.Tags)

	res, err := db.ExecContext(ctx, `
INSERT INTO applications(candidate_id, job_id, status, score, tags, source, submitted_at, updated_at)
VALUES(?,?,?,?,?,?,?,?);`,
		a.CandidateID, a.JobID, a.Status, a.Score, string(tagsB), a.Source, a.SubmittedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueErr(err) {
			return Application{}, ErrConflict
		}
		return Application{}, err
	}
	a.ID, _ = res.LastInsertId()
	return a, nil
}

// TransitionApplication moves an application along the pipeline. Invalid moves
// return ErrBadTransition; landing on hired stamps hired_at.
func TransitionApplication(ctx context.Context, db *sql.DB, id int64, to string) (Application, error) {
	cur, err := GetApplication(ctx, db, id)
	if err != nil {
		return Application{}, err
	}
	if !domain.ValidStatus(to) {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrBadTransition, to)
	}
	if !domain.ValidTransition(cur.Status, to) {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, cur.Status, to)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	var hiredAt any
	if cur.HiredAt != "" {
		hiredAt = cur.HiredAt
	}
	if to == domain.StatusHired {
		hiredAt = now
	}

	_, err = db.ExecContext(ctx, `
UPDATE applications SET status=?, updated_at=?, hired_at=? WHERE id=?;`,
		to, now, hiredAt, id)
	if err != nil {
		return Application{}, err
	}
	return GetApplication(ctx, db, id)
}

// UpdateApplicationScore is used by the ranker after (re)scoring.
func UpdateApplicationScore(ctx context.Context, db *sql.DB, id int64, score int, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	tagsB, _ := json.Marshal(tags)
	res, err := db.ExecContext(ctx, `
UPDATE applications SET score=?, tags=?, updated_at=? WHERE id=?;`,
		score, string(tagsB), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func DeleteApplication(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
