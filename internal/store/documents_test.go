package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c := mustCandidate(t, db, Candidate{Email: "doc@example.com"})

	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 256)...)
	d, err := PutDocument(ctx, db, c.ID, "resume.pdf", "application/pdf", pdf)
	require.NoError(t, err)
	assert.NotEmpty(t, d.Key)
	assert.Equal(t, len(pdf), d.SizeBytes)

	got, b, err := GetDocument(ctx, db, d.Key)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", got.Name)
	assert.Equal(t, "application/pdf", got.ContentType)
	assert.Equal(t, pdf, b)

	list, err := ListDocuments(ctx, db, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.Key, list[0].Key)
	assert.Equal(t, len(pdf), list[0].SizeBytes)

	require.NoError(t, DeleteDocument(ctx, db, d.Key))
	_, _, err = GetDocument(ctx, db, d.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutDocumentSniffsContentType(t *testing.T) {
	db := openTestDB(t)
	c := mustCandidate(t, db, Candidate{Email: "sniff@example.com"})

	d, err := PutDocument(context.Background(), db, c.ID, "notes.txt", "", []byte("plain text resume"))
	require.NoError(t, err)
	assert.Contains(t, d.ContentType, "text/plain")
}

func TestPutDocumentRejectsEmptyAndOversized(t *testing.T) {
	db := openTestDB(t)
	c := mustCandidate(t, db, Candidate{Email: "limits@example.com"})

	_, err := PutDocument(context.Background(), db, c.ID, "empty", "", nil)
	assert.Error(t, err)

	big := bytes.Repeat([]byte("a"), MaxDocumentBytes+1)
	_, err = PutDocument(context.Background(), db, c.ID, "big", "", big)
	assert.Error(t, err)
}

func TestMarkIntakeMessageDeduplicates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	fresh, err := MarkIntakeMessage(ctx, db, "<msg-1@mail.example>")
	require.NoError(t, err)
	assert.True(t, fresh)

	again, err := MarkIntakeMessage(ctx, db, "<msg-1@mail.example>")
	require.NoError(t, err)
	assert.False(t, again, "second sighting is a duplicate")
}
