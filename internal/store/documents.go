package store

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxDocumentBytes caps uploads (resumes, cover letters) to protect the DB.
const MaxDocumentBytes = 2 * 1024 * 1024 // 2MB

type Document struct {
	Key         string `json:"key"`
	CandidateID int64  `json:"candidateId"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	SizeBytes   int    `json:"sizeBytes"`
	UploadedAt  string `json:"uploadedAt"`
}

// PutDocument stores the blob and returns its generated key.
func PutDocument(ctx context.Context, db *sql.DB, candidateID int64, name, contentType string, b []byte) (Document, error) {
	if len(b) == 0 {
		return Document{}, errors.New("empty document")
	}
	if len(b) > MaxDocumentBytes {
		return Document{}, errors.New("document too large")
	}

	if contentType == "" || contentType == "application/octet-stream" {
		// sniff as fallback
		contentType = http.DetectContentType(b)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "document"
	}

	d := Document{
		Key:         uuid.NewString(),
		CandidateID: candidateID,
		Name:        name,
		ContentType: contentType,
		SizeBytes:   len(b),
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO documents(key, candidate_id, name, content_type, bytes, uploaded_at)
VALUES(?,?,?,?,?,?);`,
		d.Key, d.CandidateID, d.Name, d.ContentType, b, d.UploadedAt)
	if err != nil {
		return Document{}, err
	}
	return d, nil
}

func GetDocument(ctx context.Context, db *sql.DB, key string) (Document, []byte, error) {
	var d Document
	var b []byte
	err := db.QueryRowContext(ctx, `
SELECT key, candidate_id, name, content_type, bytes, uploaded_at
FROM documents WHERE key = ? LIMIT 1;`, key).
		Scan(&d.Key, &d.CandidateID, &d.Name, &d.ContentType, &b, &d.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, nil, ErrNotFound
	}
	if err != nil {
		return Document{}, nil, err
	}
	d.SizeBytes = len(b)
	return d, b, nil
}

// ListDocuments returns metadata only; bytes stay in the DB.
func ListDocuments(ctx context.Context, db *sql.DB, candidateID int64) ([]Document, error) {
	rows, err := db.QueryContext(ctx, `
SELECT key, candidate_id, name, content_type, length(bytes), uploaded_at
FROM documents
WHERE candidate_id = ?
ORDER BY uploaded_at DESC;`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Key, &d.CandidateID, &d.Name, &d.ContentType, &d.SizeBytes, &d.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func DeleteDocument(ctx context.Context, db *sql.DB, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?;`, key)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkIntakeMessage records an IMAP message id so intake never double-imports.
// Returns false when the message was already processed.
func MarkIntakeMessage(ctx context.Context, db *sql.DB, messageID string) (bool, error) {
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO intake_messages(message_id, processed_at)
VALUES(?,?);`, messageID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
