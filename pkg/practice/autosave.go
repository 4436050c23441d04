package practice

import (
	"context"
	"sync"
	"time"
)

const DefaultAutosaveInterval = time.Second

// FileSource yields the current live file set of an editor.
type FileSource interface {
	Files() (FileSet, error)
}

type FileSourceFunc func() (FileSet, error)

func (f FileSourceFunc) Files() (FileSet, error) { return f() }

// Autosaver rewrites one draft on a fixed interval until stopped.
type Autosaver struct {
	drafts   *DraftStore
	key      string
	source   FileSource
	interval time.Duration
	logger   Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	saves int
}

// StartAutosave launches the autosave loop for key. The loop ends when ctx
// is done or Stop is called, after one last save.
func (d *DraftStore) StartAutosave(ctx context.Context, key string, source FileSource, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	a := &Autosaver{
		drafts:   d,
		key:      key,
		source:   source,
		interval: interval,
		logger:   d.logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go a.loop(ctx)
	return a
}

func (a *Autosaver) loop(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.tick()
		case <-ctx.Done():
			a.tick()
			return
		}
	}
}

func (a *Autosaver) tick() {
	files, err := a.source.Files()
	if err == nil {
		err = a.drafts.Autosave(a.key, files)
	}
	if err != nil {
		a.logger.Warn("Autosave", "Autosave tick failed", map[string]interface{}{
			"key":   a.key,
			"error": err.Error(),
		})
		return
	}

	a.mu.Lock()
	a.saves++
	a.mu.Unlock()
}

// Stop ends the loop and waits for the final save.
func (a *Autosaver) Stop() {
	a.once.Do(a.cancel)
	<-a.done
}

// Done is closed once the loop has exited.
func (a *Autosaver) Done() <-chan struct{} {
	return a.done
}

// Saves counts successful writes so far.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}
