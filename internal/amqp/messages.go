package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IngestJobMessage asks a worker to ingest one document from shared storage.
// The document itself is not carried; Path must be readable by the worker.
type IngestJobMessage struct {
	JobID       uuid.UUID `json:"job_id"`
	Path        string    `json:"path"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewIngestJobMessage creates a job with a fresh random ID.
func NewIngestJobMessage(path string) *IngestJobMessage {
	return &IngestJobMessage{
		JobID:       uuid.New(),
		Path:        path,
		SubmittedAt: time.Now().UTC(),
	}
}

// Validate checks that the job is processable.
func (m *IngestJobMessage) Validate() error {
	if m.JobID == uuid.Nil {
		return errors.New("missing job id")
	}
	if m.Path == "" {
		return errors.New("missing document path")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *IngestJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IngestJobMessageFromJSON decodes and validates a job.
func IngestJobMessageFromJSON(data []byte) (*IngestJobMessage, error) {
	var msg IngestJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest job: %w", err)
	}
	return &msg, nil
}
