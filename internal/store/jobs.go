package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Job struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Location    string `json:"location"`
	WorkMode    string `json:"workMode"`
	Description string `json:"description"`
	Status      string `json:"status"` // open | closed | draft
	PostedAt    string `json:"postedAt"`
}

type ListJobsOpts struct {
	Status string // open | closed | draft | all
	Search string
	Sort   string // title | posted | department
	Page   int
	Limit  int
}

const jobCols = `id, title, department, location, work_mode, description, status, posted_at`

func scanJob(row interface{ Scan(...any) error }, extra ...any) (Job, error) {
	var j Job
	dest := []any{&j.ID, &j.Title, &j.Department, &j.Location, &j.WorkMode, &j.Description, &j.Status, &j.PostedAt}
	dest = append(dest, extra...)
	err := row.Scan(dest...)
	return j, err
}

func ListJobs(ctx context.Context, db *sql.DB, opts ListJobsOpts) ([]Job, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 25
	}

	sortCol, order := "posted_at", "DESC"
	switch opts.Sort {
	case "title":
		sortCol, order = "title", "ASC"
	case "department":
		sortCol, order = "department", "ASC"
	case "posted", "":
	}

	var conds []string
	var args []any
	switch opts.Status {
	case "", "all":
	default:
		conds = append(conds, "status = ?")
		args = append(args, opts.Status)
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		conds = append(conds, "(title LIKE ? OR department LIKE ?)")
		pat := "%" + s + "%"
		args = append(args, pat, pat)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
SELECT %s, COUNT(*) OVER() AS total
FROM jobs
%s
ORDER BY %s %s
LIMIT ? OFFSET ?;`, jobCols, where, sortCol, order)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Job
	var total int
	for rows.Next() {
		j, err := scanJob(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

func GetJob(ctx context.Context, db *sql.DB, id int64) (Job, error) {
	row := db.QueryRowContext(ctx, `SELECT `+jobCols+` FROM jobs WHERE id = ?;`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func CreateJob(ctx context.Context, db *sql.DB, j Job) (Job, error) {
	if j.Status == "" {
		j.Status = "open"
	}
	if j.WorkMode == "" {
		j.WorkMode = "onsite"
	}
	j.PostedAt = time.Now().UTC().Format(time.RFC3339)

	res, err := db.ExecContext(ctx, `
INSERT INTO jobs(title, department, location, work_mode, description, status, posted_at)
VALUES(?,?,?,?,?,?,?);`,
		j.Title, j.Department, j.Location, j.WorkMode, j.Description, j.Status, j.PostedAt)
	if err != nil {
		return Job{}, err
	}
	j.ID, _ = res.LastInsertId()
	return j, nil
}

func UpdateJob(ctx context.Context, db *sql.DB, j Job) (Job, error) {
	res, err := db.ExecContext(ctx, `
UPDATE jobs
SET title=?, department=?, location=?, work_mode=?, description=?, status=?
WHERE id=?;`,
		j.Title, j.Department, j.Location, j.WorkMode, j.Description, j.Status, j.ID)
	if err != nil {
		return Job{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Job{}, ErrNotFound
	}
	return GetJob(ctx, db, j.ID)
}

func DeleteJob(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
