package practice

import (
	"errors"
	"fmt"
	"strings"

	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/localstore"

	"github.com/google/uuid"
)

var ErrAlreadySubmitted = errors.New("question already submitted")

type QuestionState int

const (
	NotStarted QuestionState = iota
	InProgress
	Submitted
)

func (s QuestionState) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Submitted:
		return "submitted"
	default:
		return "not started"
	}
}

// Session ties drafts and submissions to one practice session id.
type Session struct {
	store    localstore.Store
	Drafts   *DraftStore
	Recorder *Recorder
	logger   Logger
	newID    func() string
}

func NewSession(store localstore.Store, client LedgerClient, log Logger) *Session {
	return &Session{
		store:    store,
		Drafts:   NewDraftStore(store, log),
		Recorder: NewRecorder(store, client, log),
		logger:   log,
		newID:    uuid.NewString,
	}
}

// StartSession forgets every question draft and submission and stores a new
// session id.
func (s *Session) StartSession() (string, error) {
	keys, err := s.store.Keys()
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if strings.HasPrefix(key, questionKeyPrefix) {
			if err := s.store.Delete(key); err != nil {
				return "", fmt.Errorf("clear %s: %w", key, err)
			}
		}
	}

	id := s.newID()
	if err := s.store.Set(SessionIDKey, id); err != nil {
		return "", err
	}
	s.logger.Info("Session", "Started practice session", map[string]interface{}{"session_id": id})
	return id, nil
}

func (s *Session) SessionID() (string, bool) {
	id, ok, err := s.store.Get(SessionIDKey)
	if err != nil || !ok || id == "" {
		return "", false
	}
	return id, true
}

func (s *Session) State(q catalog.Question) (QuestionState, error) {
	if s.Recorder.IsSubmitted(q.Id) {
		return Submitted, nil
	}
	exists, err := s.Drafts.Exists(StorageKey(q.Id, q.Template))
	if err != nil {
		return NotStarted, err
	}
	if exists {
		return InProgress, nil
	}
	return NotStarted, nil
}

// Begin opens a question for editing and returns its live file set: the saved
// draft if there is one, otherwise the starter files, which are saved at once.
func (s *Session) Begin(q catalog.Question) (FileSet, error) {
	if s.Recorder.IsSubmitted(q.Id) {
		return nil, ErrAlreadySubmitted
	}

	key := StorageKey(q.Id, q.Template)
	if files, ok := s.Drafts.Restore(key); ok {
		return files, nil
	}

	files := FileSet(q.StarterFiles())
	if err := s.Drafts.Autosave(key, files); err != nil {
		return nil, err
	}
	return files, nil
}

// SavePlayground stores the free-form playground outside any question.
func (s *Session) SavePlayground(template string, files FileSet) error {
	if !catalog.IsKnownTemplate(template) {
		return fmt.Errorf("unknown template %q", template)
	}
	if err := s.store.Set(PlaygroundTemplateKey, template); err != nil {
		return err
	}
	return localstore.SaveJSON(s.store, PlaygroundFilesKey, files)
}

// LoadPlayground returns the stored playground. ok is false when no files
// were saved; the template then falls back to the default.
func (s *Session) LoadPlayground() (template string, files FileSet, ok bool) {
	template = catalog.DefaultTemplate
	if t, found, err := s.store.Get(PlaygroundTemplateKey); err == nil && found && catalog.IsKnownTemplate(t) {
		template = t
	}
	if err := localstore.LoadJSON(s.store, PlaygroundFilesKey, &files); err != nil || files == nil {
		return template, nil, false
	}
	return template, files, true
}
