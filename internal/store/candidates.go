package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Candidate struct {
	ID              int64    `json:"id"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Location        string   `json:"location"`
	Skills          []string `json:"skills"`
	YearsExperience int      `json:"yearsExperience"`
	EducationLevel  string   `json:"educationLevel"`
	Source          string   `json:"source"`
	CreatedAt       string   `json:"createdAt"`
}

type ListCandidatesOpts struct {
	Search string // matches name or email
	Sort   string // name | email | created | experience
	Page   int
	Limit  int
}

const candidateCols = `id, first_name, last_name, email, phone, location, skills, years_experience, education_level, source, created_at`

func scanCandidate(row interface{ Scan(...any) error }, extra ...any) (Candidate, error) {
	var c Candidate
	var skillsJSON string
	dest := []any{&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location,
		&skillsJSON, &c.YearsExperience, &c.EducationLevel, &c.Source, &c.CreatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return Candidate{}, err
	}
	_ = json.Unmarshal([]byte(skillsJSON), &c.Skills)
	return c, nil
}

func ListCandidates(ctx context.Context, db *sql.DB, opts ListCandidatesOpts) ([]Candidate, int, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 25
	}

	// whitelist sort columns (prevents SQL injection)
	sortCol, order := "created_at", "DESC"
	switch opts.Sort {
	case "name":
		sortCol, order = "last_name", "ASC"
	case "email":
		sortCol, order = "email", "ASC"
	case "experience":
		sortCol, order = "years_experience", "DESC"
	case "created", "":
	}

	where := ""
	args := []any{}
	if s := strings.TrimSpace(opts.Search); s != "" {
		where = `WHERE first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\'`
		pat := "%" + escapeLike(s) + "%"
		args = append(args, pat, pat, pat)
	}

	query := fmt.Sprintf(`
SELECT %s, COUNT(*) OVER() AS total
FROM candidates
%s
ORDER BY %s %s
LIMIT ? OFFSET ?;`, candidateCols, where, sortCol, order)
	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Candidate
	var total int
	for rows.Next() {
		c, err := scanCandidate(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func GetCandidate(ctx context.Context, db *sql.DB, id int64) (Candidate, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+candidateCols+` FROM candidates WHERE id = ?;`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	return c, err
}

func GetCandidateByEmail(ctx context.Context, db *sql.DB, email string) (Candidate, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+candidateCols+` FROM candidates WHERE email = ? COLLATE NOCASE;`, email)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, ErrNotFound
	}
	return c, err
}

func CreateCandidate(ctx context.Context, db *sql.DB, c Candidate) (Candidate, error) {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Source == "" {
		c.Source = "form"
	}
	c.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	skillsB, _ := json.Marshal(c.Skills)

	res, err := db.ExecContext(ctx, `
INSERT INTO candidates(first_name, last_name, email, phone, location, skills, years_experience, education_level, source, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?);`,
		c.FirstName, c.LastName, strings.ToLower(strings.TrimSpace(c.Email)), c.Phone, c.Location,
		string(skillsB), c.YearsExperience, c.EducationLevel, c.Source, c.CreatedAt)
	if err != nil {
		if isUniqueErr(err) {
			return Candidate{}, ErrConflict
		}
		return Candidate{}, err
	}
	c.ID, _ = res.LastInsertId()
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c, nil
}

func UpdateCandidate(ctx context.Context, db *sql.DB, c Candidate) (Candidate, error) {
	if c.Skills == nil {
		c.Skills = []string{}
	}
	skillsB, _ := json.Marshal(c.Skills)

	res, err := db.ExecContext(ctx, `
UPDATE candidates
SET first_name=?, last_name=?, email=?, phone=?, location=?, skills=?, years_experience=?, education_level=?, source=?
WHERE id=?;`,
		c.FirstName, c.LastName, strings.ToLower(strings.TrimSpace(c.Email)), c.Phone, c.Location,
		string(skillsB), c.YearsExperience, c.EducationLevel, c.Source, c.ID)
	if err != nil {
		if isUniqueErr(err) {
			return Candidate{}, ErrConflict
		}
		return Candidate{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Candidate{}, ErrNotFound
	}
	return GetCandidate(ctx, db, c.ID)
}

func DeleteCandidate(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// escapeLike backslash-escapes LIKE wildcards so search input matches
// literally. Pair with ESCAPE '\' in the query.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// isUniqueErr sniffs sqlite's constraint violation text; modernc doesn't
// export a typed error for it.
func isUniqueErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}
