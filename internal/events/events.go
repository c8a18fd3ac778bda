package events

import (
	"encoding/json"
	"time"
)

// Event types published over SSE.
const (
	TypeCandidateCreated   = "candidate_created"
	TypeCandidateUpdated   = "candidate_updated"
	TypeCandidateDeleted   = "candidate_deleted"
	TypeJobCreated         = "job_created"
	TypeJobUpdated         = "job_updated"
	TypeJobDeleted         = "job_deleted"
	TypeApplicationCreated = "application_created"
	TypeApplicationMoved   = "application_moved"
	TypeApplicationDeleted = "application_deleted"
	TypeInterviewScheduled = "interview_scheduled"
	TypeInterviewUpdated   = "interview_updated"
	TypeDocumentUploaded   = "document_uploaded"
	TypeIntakeImported     = "intake_imported"
	TypePing               = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
