package practice

import (
	"testing"

	"interview-practice-be/pkg/catalog"
	"interview-practice-be/pkg/localstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionClearsOnlyQuestionKeys(t *testing.T) {
	store := localstore.NewMemoryStore()
	s := NewSession(store, &fakeLedger{}, nopLogger{})

	require.NoError(t, store.Set(StorageKey(1, "react"), "{}"))
	require.NoError(t, store.Set(StorageKey(1, "react")+"/App.js", `"x"`))
	require.NoError(t, store.Set(SubmissionsKey, "[]"))
	require.NoError(t, store.Set(PlaygroundFilesKey, "{}"))
	require.NoError(t, store.Set("theme", "dark"))

	id, err := s.StartSession()
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, ok := s.SessionID()
	assert.True(t, ok)
	assert.Equal(t, id, got)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{SessionIDKey, "sandpack-files", "theme"}, keys)
}

func TestSessionIDAbsent(t *testing.T) {
	s := NewSession(localstore.NewMemoryStore(), &fakeLedger{}, nopLogger{})
	_, ok := s.SessionID()
	assert.False(t, ok)
}

func TestQuestionLifecycle(t *testing.T) {
	store := localstore.NewMemoryStore()
	s := NewSession(store, &fakeLedger{}, nopLogger{})
	q, err := catalog.Default().Find(1)
	require.NoError(t, err)

	state, err := s.State(q)
	require.NoError(t, err)
	assert.Equal(t, NotStarted, state)

	files, err := s.Begin(q)
	require.NoError(t, err)
	assert.Equal(t, FileSet(q.StarterCode), files)

	state, _ = s.State(q)
	assert.Equal(t, InProgress, state)

	require.NoError(t, s.Drafts.Autosave(StorageKey(q.Id, q.Template), FileSet{"/App.js": "mine"}))
	files, err = s.Begin(q)
	require.NoError(t, err)
	assert.Equal(t, "mine", files["/App.js"])

	_, err = s.Recorder.Submit(t.Context(), q, "s1")
	require.NoError(t, err)
	state, _ = s.State(q)
	assert.Equal(t, Submitted, state)
	assert.Equal(t, "submitted", state.String())

	_, err = s.Begin(q)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
}

func TestPlayground(t *testing.T) {
	s := NewSession(localstore.NewMemoryStore(), &fakeLedger{}, nopLogger{})

	template, files, ok := s.LoadPlayground()
	assert.False(t, ok)
	assert.Nil(t, files)
	assert.Equal(t, catalog.DefaultTemplate, template)

	require.NoError(t, s.SavePlayground("vue", FileSet{"/src/App.vue": "<template/>"}))
	template, files, ok = s.LoadPlayground()
	require.True(t, ok)
	assert.Equal(t, "vue", template)
	assert.Equal(t, "<template/>", files["/src/App.vue"])

	assert.Error(t, s.SavePlayground("cobol", FileSet{}))
}
