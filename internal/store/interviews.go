package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Interview struct {
	ID              int64  `json:"id"`
	ApplicationID   int64  `json:"applicationId"`
	Kind            string `json:"kind"` // phone | technical | onsite | final
	Interviewer     string `json:"interviewer"`
	ScheduledAt     string `json:"scheduledAt"`
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"` // scheduled | completed | canceled
	Notes           string `json:"notes"`
}

type ListInterviewsOpts struct {
	ApplicationID int64
	Status        string
	Window        string // upcoming | week | all
	Page          int
	Limit         int
}

const interviewCols = `id, application_id, kind, interviewer, scheduled_at, duration_minutes, status, notes`

func scanInterview(row interface{ Scan(...any) error }, extra ...any) (Interview, error) {
	var iv Interview
	dest := []any{&iv.ID, &iv.ApplicationID, &iv.Kind, &iv.Interviewer, &iv.ScheduledAt,
		&iv.DurationMinutes, &iv.Status, &iv.Notes}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return iv, err
}

func ListInterviews(ctx context.Context, db *sql.DB, opts ListInterviewsOpts) ([]Interview, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 25
	}

	var conds []string
	var args []any
	if opts.ApplicationID > 0 {
		conds = append(conds, "application_id = ?")
		args = append(args, opts.ApplicationID)
	}
	if opts.Status != "" && opts.Status != "all" {
		conds = append(conds, "status = ?")
		args = append(args, opts.Status)
	}
	switch opts.Window {
	case "upcoming":
		// scheduled_at is RFC 3339 text; the cutoff must match that format
		// or the string comparison lets today's past slots through.
		conds = append(conds, "scheduled_at >= "+sqlUTCNow())
	case "week":
		conds = append(conds, "strftime('%Y-%W', scheduled_at) = strftime('%Y-%W', 'now')")
	case "", "all":
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
SELECT %s, COUNT(*) OVER() AS total
FROM interviews
%s
ORDER BY scheduled_at ASC
LIMIT ? OFFSET ?;`, interviewCols, where)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Interview
	var total int
	for rows.Next() {
		iv, err := scanInterview(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, iv)
	}
	return out, total, rows.Err()
}

func GetInterview(ctx context.Context, db *sql.DB, id int64) (Interview, error) {
	row := db.QueryRowContext(ctx, `SELECT `+interviewCols+` FROM interviews WHERE id = ?;`, id)
	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Interview{}, ErrNotFound
	}
	return iv, err
}

func CreateInterview(ctx context.Context, db *sql.DB, iv Interview) (Interview, error) {
	if iv.Kind == "" {
		iv.Kind = "phone"
	}
	if iv.Status == "" {
		iv.Status = "scheduled"
	}
	if iv.DurationMinutes <= 0 {
		iv.DurationMinutes = 60
	}
	if iv.ScheduledAt == "" {
		iv.ScheduledAt = time.Now().UTC().Format(time.RFC3339)
	}

	res, err := db.ExecContext(ctx, `
INSERT INTO interviews(application_id, kind, interviewer, scheduled_at, duration_minutes, status, notes)
VALUES(?,?,?,?,?,?,?);`,
		iv.ApplicationID, iv.Kind, iv.Interviewer, iv.ScheduledAt, iv.DurationMinutes, iv.Status, iv.Notes)
	if err != nil {
		return Interview{}, err
	}
	iv.ID, _ = res.LastInsertId()
	return iv, nil
}

func UpdateInterview(ctx context.Context, db *sql.DB, iv Interview) (Interview, error) {
	res, err := db.ExecContext(ctx, `
UPDATE interviews
SET kind=?, interviewer=?, scheduled_at=?, duration_minutes=?, status=?, notes=?
WHERE id=?;`,
		iv.Kind, iv.Interviewer, iv.ScheduledAt, iv.DurationMinutes, iv.Status, iv.Notes, iv.ID)
	if err != nil {
		return Interview{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Interview{}, ErrNotFound
	}
	return GetInterview(ctx, db, iv.ID)
}

func DeleteInterview(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM interviews WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
