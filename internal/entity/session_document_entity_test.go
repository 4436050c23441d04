package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestampMatchesISOString(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.FixedZone("CET", 3600))
	assert.Equal(t, "2024-03-09T13:05:07.123Z", FormatTimestamp(ts))
}

func TestDocumentFilename(t *testing.T) {
	assert.Equal(t, "question-submission-abc-123.json", DocumentFilename("abc-123"))
}

func TestUpsertReplacesWholeRecord(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := NewSessionDocument("s1", now)

	doc.Upsert(SubmissionRecord{QuestionId: 1, Files: map[string]string{"/App.js": "a", "/util.js": "u"}}, now)
	doc.Upsert(SubmissionRecord{QuestionId: 1, Files: map[string]string{"/App.js": "b"}}, now.Add(time.Minute))

	rec, ok := doc.Submission(1)
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"/App.js": "b"}, rec.Files)
	assert.Equal(t, 1, doc.SubmissionCount())
	assert.Equal(t, "2024-01-01T00:01:00.000Z", doc.LastUpdated)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", doc.StartTime)
}

func TestUpsertInitialisesNilSubmissions(t *testing.T) {
	doc := &SessionDocument{SessionId: "s1"}
	doc.Upsert(SubmissionRecord{QuestionId: 7}, time.Now())
	assert.Equal(t, 1, doc.SubmissionCount())
}

func TestMergeKeepsLatestSubmission(t *testing.T) {
	doc := &SessionDocument{
		SessionId:   "s1",
		StartTime:   "2024-01-01T10:00:00.000Z",
		LastUpdated: "2024-01-01T10:05:00.000Z",
		Submissions: map[string]SubmissionRecord{
			"1": {QuestionId: 1, SubmissionDate: "2024-01-01T10:05:00.000Z", Files: map[string]string{"/App.js": "new"}},
		},
	}
	imported := &SessionDocument{
		SessionId:   "s1",
		StartTime:   "2024-01-01T09:00:00.000Z",
		LastUpdated: "2024-01-01T10:07:00.000Z",
		Submissions: map[string]SubmissionRecord{
			"1": {QuestionId: 1, SubmissionDate: "2024-01-01T09:30:00.000Z", Files: map[string]string{"/App.js": "old"}},
			"2": {QuestionId: 2, SubmissionDate: "2024-01-01T10:07:00.000Z"},
		},
	}

	doc.Merge(imported)
	doc.Merge(nil)

	assert.Equal(t, 2, doc.SubmissionCount())
	rec, _ := doc.Submission(1)
	assert.Equal(t, "new", rec.Files["/App.js"])
	assert.Equal(t, "2024-01-01T09:00:00.000Z", doc.StartTime)
	assert.Equal(t, "2024-01-01T10:07:00.000Z", doc.LastUpdated)
}

func TestSessionDocumentJSONKeepsUnmodelledData(t *testing.T) {
	stored := `{
		"sessionId": "s1",
		"startTime": 1704099600000,
		"submissions": {
			"1": {"questionId": 1, "submissionDate": "2024-01-01T09:00:00.000Z", "files": {"/App.js": {"code": "x"}, "/b.js": "b"}},
			"2": "not a record"
		},
		"notes": {"by": "kim"}
	}`

	var doc SessionDocument
	require.NoError(t, json.Unmarshal([]byte(stored), &doc))
	assert.Equal(t, "", doc.StartTime)
	assert.Equal(t, 2, doc.SubmissionCount())
	rec, ok := doc.Submission(1)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"/App.js": "x", "/b.js": "b"}, rec.Files)

	doc.Upsert(SubmissionRecord{QuestionId: 3, Files: map[string]string{"/c.js": "c"}}, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sessionId": "s1",
		"startTime": 1704099600000,
		"lastUpdated": "2024-01-02T00:00:00.000Z",
		"submissions": {
			"1": {"questionId": 1, "submissionDate": "2024-01-01T09:00:00.000Z", "files": {"/App.js": {"code": "x"}, "/b.js": "b"}},
			"2": "not a record",
			"3": {"questionId": 3, "questionTitle": "", "questionDescription": "", "template": "", "submitted": false, "submissionDate": "", "files": {"/c.js": "c"}}
		},
		"notes": {"by": "kim"}
	}`, string(out))
}

func TestSessionDocumentRejectsNonObject(t *testing.T) {
	var doc SessionDocument
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1]`), &doc), ErrDocumentNotObject)
	assert.Error(t, json.Unmarshal([]byte(`{"sessionId":`), &doc))
}

func TestSessionDocumentWithoutSubmissionsObject(t *testing.T) {
	var doc SessionDocument
	require.NoError(t, json.Unmarshal([]byte(`{"sessionId":"s1","startTime":"t","submissions":null}`), &doc))
	assert.Equal(t, 0, doc.SubmissionCount())
	doc.Upsert(SubmissionRecord{QuestionId: 1}, time.Now())
	assert.Equal(t, 1, doc.SubmissionCount())
}
