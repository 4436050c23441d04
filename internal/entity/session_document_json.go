package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// Stored documents are read loosely: any JSON object is accepted, fields of
// an unexpected type are kept verbatim and written back unchanged. Only
// records replaced through Upsert are re-encoded from their Go fields.

var ErrDocumentNotObject = errors.New("session document is not a JSON object")

const (
	fieldSessionId   = "sessionId"
	fieldStartTime   = "startTime"
	fieldLastUpdated = "lastUpdated"
	fieldSubmissions = "submissions"
)

func (d *SessionDocument) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ErrDocumentNotObject
	}
	if fields == nil {
		// literal null
		return ErrDocumentNotObject
	}

	*d = SessionDocument{Submissions: make(map[string]SubmissionRecord)}
	extra := make(map[string]json.RawMessage)

	for key, raw := range fields {
		switch key {
		case fieldSessionId:
			if !decodeString(raw, &d.SessionId) {
				extra[key] = raw
			}
		case fieldStartTime:
			if !decodeString(raw, &d.StartTime) {
				extra[key] = raw
			}
		case fieldLastUpdated:
			if !decodeString(raw, &d.LastUpdated) {
				extra[key] = raw
			}
		case fieldSubmissions:
			var records map[string]json.RawMessage
			if err := json.Unmarshal(raw, &records); err != nil || records == nil {
				// not an object: there is nothing to merge into
				continue
			}
			for qid, rec := range records {
				var r SubmissionRecord
				_ = r.UnmarshalJSON(rec)
				d.Submissions[qid] = r
			}
		default:
			extra[key] = raw
		}
	}
	if len(extra) > 0 {
		d.Extra = extra
	}
	return nil
}

func (d SessionDocument) MarshalJSON() ([]byte, error) {
	w := objectWriter{}

	if err := w.knownString(fieldSessionId, d.SessionId, d.Extra, true); err != nil {
		return nil, err
	}
	if err := w.knownString(fieldStartTime, d.StartTime, d.Extra, true); err != nil {
		return nil, err
	}

	submissions := d.Submissions
	if submissions == nil {
		submissions = map[string]SubmissionRecord{}
	}
	if err := w.field(fieldSubmissions, submissions); err != nil {
		return nil, err
	}

	if err := w.knownString(fieldLastUpdated, d.LastUpdated, d.Extra, false); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		if w.seen(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, d.Extra[k])
	}
	return w.bytes(), nil
}

// recordFields mirrors SubmissionRecord without its methods.
type recordFields struct {
	QuestionId          int               `json:"questionId"`
	QuestionTitle       string            `json:"questionTitle"`
	QuestionDescription string            `json:"questionDescription"`
	Template            string            `json:"template"`
	Submitted           bool              `json:"submitted"`
	SubmissionDate      string            `json:"submissionDate"`
	Files               map[string]string `json:"files"`
}

// UnmarshalJSON never fails on valid JSON. Fields are filled where their
// type allows; the original bytes are kept for re-encoding.
func (r *SubmissionRecord) UnmarshalJSON(data []byte) error {
	*r = SubmissionRecord{raw: append(json.RawMessage(nil), data...)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	_ = json.Unmarshal(fields["questionId"], &r.QuestionId)
	decodeString(fields["questionTitle"], &r.QuestionTitle)
	decodeString(fields["questionDescription"], &r.QuestionDescription)
	decodeString(fields["template"], &r.Template)
	_ = json.Unmarshal(fields["submitted"], &r.Submitted)
	decodeString(fields["submissionDate"], &r.SubmissionDate)
	r.Files = decodeFiles(fields["files"])
	return nil
}

func (r SubmissionRecord) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(recordFields{
		QuestionId:          r.QuestionId,
		QuestionTitle:       r.QuestionTitle,
		QuestionDescription: r.QuestionDescription,
		Template:            r.Template,
		Submitted:           r.Submitted,
		SubmissionDate:      r.SubmissionDate,
		Files:               r.Files,
	})
}

// FileMap is a path to content map that also accepts Sandpack
// {"code": "..."} values when decoded.
type FileMap map[string]string

func (f *FileMap) UnmarshalJSON(data []byte) error {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if values == nil {
		*f = nil
		return nil
	}
	*f = decodeFiles(data)
	return nil
}

// decodeFiles accepts plain strings and Sandpack {"code": "..."} values.
func decodeFiles(raw json.RawMessage) map[string]string {
	var values map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &values) != nil || values == nil {
		return nil
	}
	files := make(map[string]string, len(values))
	for path, v := range values {
		var content string
		if decodeString(v, &content) {
			files[path] = content
			continue
		}
		var obj struct {
			Code *string `json:"code"`
		}
		if json.Unmarshal(v, &obj) == nil && obj.Code != nil {
			files[path] = *obj.Code
		}
	}
	return files
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	*dst = s
	return true
}

// objectWriter emits a JSON object with keys in insertion order.
type objectWriter struct {
	buf  bytes.Buffer
	keys map[string]bool
}

func (w *objectWriter) seen(key string) bool {
	return w.keys[key]
}

func (w *objectWriter) raw(key string, value json.RawMessage) {
	if w.keys == nil {
		w.keys = make(map[string]bool)
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.keys[key] = true
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
}

func (w *objectWriter) field(key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	w.raw(key, b)
	return nil
}

// knownString writes value, or the verbatim extra when the stored field was
// not a string and nothing has replaced it.
func (w *objectWriter) knownString(key, value string, extra map[string]json.RawMessage, always bool) error {
	if value == "" {
		if kept, ok := extra[key]; ok {
			w.raw(key, kept)
			return nil
		}
		if !always {
			return nil
		}
	}
	return w.field(key, value)
}

func (w *objectWriter) bytes() []byte {
	if w.keys == nil {
		return []byte("{}")
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}
