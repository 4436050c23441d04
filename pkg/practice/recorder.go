package practice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/isotime"
	"interview-practice-be/pkg/localstore"
)

var ErrNoSession = errors.New("no practice session started")

// Recorder gathers a question's draft, ships it to the ledger and keeps a
// local mirror of what the ledger has accepted.
type Recorder struct {
	store  localstore.Store
	client LedgerClient
	logger Logger
	now    func() time.Time
}

func NewRecorder(store localstore.Store, client LedgerClient, log Logger) *Recorder {
	return &Recorder{store: store, client: client, logger: log, now: time.Now}
}

// CollectFiles assembles the file set of a question from its whole-set entry
// and any legacy per-file entries ("<storageKey>/<path>"). Per-file entries
// are applied after the whole set, in key order, and win on collision.
func (r *Recorder) CollectFiles(questionId int, template string) (FileSet, error) {
	storageKey := StorageKey(questionId, template)
	keys, err := r.store.Keys()
	if err != nil {
		return nil, err
	}

	files := FileSet{}
	var perFile []string
	for _, key := range keys {
		switch {
		case key == storageKey:
			var base FileSet
			if err := localstore.LoadJSON(r.store, key, &base); err != nil {
				r.logger.Warn("Recorder", "Skipping unreadable draft", map[string]interface{}{"key": key, "error": err.Error()})
				continue
			}
			for p, content := range base {
				files[p] = content
			}
		case strings.HasPrefix(key, storageKey+"/"):
			perFile = append(perFile, key)
		}
	}

	sort.Strings(perFile)
	for _, key := range perFile {
		var value json.RawMessage
		if err := localstore.LoadJSON(r.store, key, &value); err != nil {
			r.logger.Warn("Recorder", "Skipping unreadable file entry", map[string]interface{}{"key": key, "error": err.Error()})
			continue
		}
		content, ok := fileContent(value)
		if !ok {
			r.logger.Warn("Recorder", "Skipping file entry without code", map[string]interface{}{"key": key})
			continue
		}
		p := strings.TrimPrefix(key, storageKey+"/")
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		files[p] = content
	}

	return files, nil
}

// Submit sends the question's current draft to the ledger. The local mirror
// is only updated once the ledger has acknowledged the submission.
func (r *Recorder) Submit(ctx context.Context, q catalog.Question, sessionId string) (*SubmitResult, error) {
	if sessionId == "" {
		return nil, ErrNoSession
	}

	files, err := r.CollectFiles(q.Id, q.Template)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}

	submission := Submission{
		QuestionId:          q.Id,
		QuestionTitle:       q.Title,
		QuestionDescription: q.Description,
		Template:            q.Template,
		Submitted:           true,
		SubmissionDate:      isotime.Format(r.now()),
		Files:               files,
		SessionId:           sessionId,
	}

	res, err := r.client.Submit(ctx, submission)
	if err != nil {
		r.logger.Error("Recorder", "Submission not accepted", map[string]interface{}{
			"question_id": q.Id,
			"error":       err.Error(),
		})
		return res, err
	}

	if err := r.remember(submission); err != nil {
		return res, fmt.Errorf("submission saved on server but not locally: %w", err)
	}
	return res, nil
}

func (r *Recorder) remember(s Submission) error {
	mirror, err := r.Submissions()
	if err != nil {
		return err
	}
	replaced := false
	for i := range mirror {
		if mirror[i].QuestionId == s.QuestionId {
			mirror[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		mirror = append(mirror, s)
	}
	return localstore.SaveJSON(r.store, SubmissionsKey, mirror)
}

// Submissions returns the local mirror. An unreadable mirror is treated as
// empty.
func (r *Recorder) Submissions() ([]Submission, error) {
	var mirror []Submission
	err := localstore.LoadJSON(r.store, SubmissionsKey, &mirror)
	switch {
	case err == nil:
		return mirror, nil
	case errors.Is(err, localstore.ErrNotFound):
		return nil, nil
	case errors.Is(err, localstore.ErrMalformed):
		r.logger.Warn("Recorder", "Ignoring unreadable submissions mirror", map[string]interface{}{"error": err.Error()})
		return nil, nil
	default:
		return nil, err
	}
}

func (r *Recorder) IsSubmitted(questionId int) bool {
	mirror, err := r.Submissions()
	if err != nil {
		return false
	}
	for _, s := range mirror {
		if s.QuestionId == questionId && s.Submitted {
			return true
		}
	}
	return false
}

// Reconcile replaces the local mirror with the ledger's view of the session.
func (r *Recorder) Reconcile(ctx context.Context, sessionId string) error {
	if sessionId == "" {
		return ErrNoSession
	}

	doc, err := r.client.Session(ctx, sessionId)
	if errors.Is(err, ErrSessionNotFound) {
		return r.store.Delete(SubmissionsKey)
	}
	if err != nil {
		return err
	}

	mirror := make([]Submission, 0, len(doc.Submissions))
	for _, s := range doc.Submissions {
		s.SessionId = sessionId
		mirror = append(mirror, s)
	}
	sort.Slice(mirror, func(i, j int) bool { return mirror[i].QuestionId < mirror[j].QuestionId })
	return localstore.SaveJSON(r.store, SubmissionsKey, mirror)
}
