package events

import "time"

const SubmissionRecordedType = "SUBMISSION_RECORDED"

// Event is anything that can be published on the event bus.
type Event interface {
	// EventType is the subject suffix, e.g. "SUBMISSION_RECORDED".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSubmissionRecorded describes one successful upsert into a session ledger.
func NewSubmissionRecorded(sessionId string, questionId int, filename string, isNewFile bool, submissionCount int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: SubmissionRecordedType,
		Data: map[string]interface{}{
			"sessionId":       sessionId,
			"questionId":      questionId,
			"filename":        filename,
			"isNewFile":       isNewFile,
			"submissionCount": submissionCount,
			"occurredAt":      at.UTC().Format(time.RFC3339Nano),
		},
		OccurredAt: at,
	}
}
