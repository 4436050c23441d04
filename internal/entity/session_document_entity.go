package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"interview-practice-be/pkg/isotime"
)

// SubmissionRecord is one question's captured solution inside a session.
// A later submission for the same question replaces the earlier one.
type SubmissionRecord struct {
	QuestionId          int               `json:"questionId"`
	QuestionTitle       string            `json:"questionTitle"`
	QuestionDescription string            `json:"questionDescription"`
	Template            string            `json:"template"`
	Submitted           bool              `json:"submitted"`
	SubmissionDate      string            `json:"submissionDate"`
	Files               map[string]string `json:"files"`

	raw json.RawMessage // stored bytes, written back while the record is untouched
}

// SessionDocument is the persisted ledger of one practice session.
// Timestamps are kept as the ISO strings that are written to disk so that a
// document parsed from storage round-trips untouched.
type SessionDocument struct {
	SessionId   string                      `json:"sessionId"`
	StartTime   string                      `json:"startTime"`
	LastUpdated string                      `json:"lastUpdated,omitempty"`
	Submissions map[string]SubmissionRecord `json:"submissions"`

	// Extra holds top-level fields this package does not model, and known
	// fields whose stored value was not a string.
	Extra map[string]json.RawMessage `json:"-"`
}

// FormatTimestamp renders t the way browsers render Date.toISOString().
func FormatTimestamp(t time.Time) string {
	return isotime.Format(t)
}

func DocumentFilename(sessionId string) string {
	return fmt.Sprintf("question-submission-%s.json", sessionId)
}

func QuestionKey(questionId int) string {
	return strconv.Itoa(questionId)
}

func NewSessionDocument(sessionId string, now time.Time) *SessionDocument {
	return &SessionDocument{
		SessionId:   sessionId,
		StartTime:   FormatTimestamp(now),
		Submissions: make(map[string]SubmissionRecord),
	}
}

// Upsert replaces the record stored under the record's question id and stamps
// lastUpdated.
func (d *SessionDocument) Upsert(record SubmissionRecord, now time.Time) {
	if d.Submissions == nil {
		d.Submissions = make(map[string]SubmissionRecord)
	}
	d.Submissions[QuestionKey(record.QuestionId)] = record
	d.LastUpdated = FormatTimestamp(now)
}

func (d *SessionDocument) SubmissionCount() int {
	return len(d.Submissions)
}

func (d *SessionDocument) Submission(questionId int) (SubmissionRecord, bool) {
	rec, ok := d.Submissions[QuestionKey(questionId)]
	return rec, ok
}

// Merge folds other into d. Per question the later submissionDate wins; the
// earlier startTime and later lastUpdated are kept. Top-level fields only
// other carries are copied over.
func (d *SessionDocument) Merge(other *SessionDocument) {
	if other == nil {
		return
	}
	if d.Submissions == nil {
		d.Submissions = make(map[string]SubmissionRecord)
	}
	for key, rec := range other.Submissions {
		if cur, ok := d.Submissions[key]; ok && cur.SubmissionDate >= rec.SubmissionDate {
			continue
		}
		d.Submissions[key] = rec
	}
	if other.StartTime != "" && (d.StartTime == "" || other.StartTime < d.StartTime) {
		d.StartTime = other.StartTime
	}
	if other.LastUpdated > d.LastUpdated {
		d.LastUpdated = other.LastUpdated
	}
	for key, value := range other.Extra {
		if _, ok := d.Extra[key]; ok {
			continue
		}
		if d.Extra == nil {
			d.Extra = make(map[string]json.RawMessage)
		}
		d.Extra[key] = value
	}
}
