// Package practice is the client side of a practice session: per-question
// drafts kept in a local store, the submission recorder that ships them to
// the ledger, and the session bookkeeping around both.
package practice

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

const (
	SessionIDKey          = "interview-session-id"
	SubmissionsKey        = "question-submissions"
	PlaygroundTemplateKey = "sandpack-template"
	PlaygroundFilesKey    = "sandpack-files"

	questionKeyPrefix = "question-"
)

// StorageKey names the local entry holding a question's draft.
func StorageKey(questionId int, template string) string {
	return questionKeyPrefix + strconv.Itoa(questionId) + "-" + template
}

// FileSet maps sandbox paths ("/App.js") to file contents.
type FileSet map[string]string

// UnmarshalJSON accepts plain string contents as well as the editor's
// {"code": "..."} file objects.
func (f *FileSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*f = nil
		return nil
	}

	out := make(FileSet, len(raw))
	for path, value := range raw {
		content, ok := fileContent(value)
		if !ok {
			return fmt.Errorf("file %s: unsupported value", path)
		}
		out[path] = content
	}
	*f = out
	return nil
}

func fileContent(value json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s, true
	}
	var obj struct {
		Code *string `json:"code"`
	}
	if err := json.Unmarshal(value, &obj); err == nil && obj.Code != nil {
		return *obj.Code, true
	}
	return "", false
}

func (f FileSet) Clone() FileSet {
	if f == nil {
		return nil
	}
	out := make(FileSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Paths returns the file paths in sorted order.
func (f FileSet) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
