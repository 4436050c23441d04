package practice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"interview-practice-be/pkg/localstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type liveEditor struct {
	mu    sync.Mutex
	files FileSet
}

func (e *liveEditor) Files() (FileSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.files.Clone(), nil
}

func (e *liveEditor) edit(path, content string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files[path] = content
}

func TestAutosaverPersistsEdits(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDraftStore(localstore.NewMemoryStore(), nopLogger{})
	key := StorageKey(1, "react")
	editor := &liveEditor{files: FileSet{"/App.js": "start"}}

	a := d.StartAutosave(context.Background(), key, editor, 10*time.Millisecond)
	require.Eventually(t, func() bool { return a.Saves() > 0 }, time.Second, 5*time.Millisecond)

	editor.edit("/App.js", "typed")
	require.Eventually(t, func() bool {
		files, ok := d.Restore(key)
		return ok && files["/App.js"] == "typed"
	}, time.Second, 5*time.Millisecond)

	a.Stop()
	a.Stop()
}

func TestAutosaverFlushesOnStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDraftStore(localstore.NewMemoryStore(), nopLogger{})
	key := StorageKey(4, "node")
	editor := &liveEditor{files: FileSet{"/index.js": "last words"}}

	ctx, cancel := context.WithCancel(context.Background())
	a := d.StartAutosave(ctx, key, editor, time.Hour)
	cancel()
	<-a.Done()

	files, ok := d.Restore(key)
	require.True(t, ok)
	assert.Equal(t, "last words", files["/index.js"])
}

func TestAutosaverSurvivesSourceErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDraftStore(localstore.NewMemoryStore(), nopLogger{})
	var calls int
	var mu sync.Mutex
	src := FileSourceFunc(func() (FileSet, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return nil, errors.New("editor busy")
		}
		return FileSet{"/App.js": "ok"}, nil
	})

	a := d.StartAutosave(context.Background(), StorageKey(1, "react"), src, 5*time.Millisecond)
	require.Eventually(t, func() bool { return a.Saves() > 0 }, time.Second, 5*time.Millisecond)
	a.Stop()
}
