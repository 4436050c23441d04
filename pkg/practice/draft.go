package practice

import (
	"errors"

	"interview-practice-be/pkg/localstore"
)

// DraftStore persists the live file set of each question under its storage
// key. Operations on one key never touch another.
type DraftStore struct {
	store  localstore.Store
	logger Logger
}

func NewDraftStore(store localstore.Store, log Logger) *DraftStore {
	return &DraftStore{store: store, logger: log}
}

// Restore returns the saved draft. Missing or unreadable drafts report false
// so the caller falls back to the starter files.
func (d *DraftStore) Restore(storageKey string) (FileSet, bool) {
	var files FileSet
	if err := localstore.LoadJSON(d.store, storageKey, &files); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			d.logger.Warn("Drafts", "Ignoring unreadable draft", map[string]interface{}{
				"key":   storageKey,
				"error": err.Error(),
			})
		}
		return nil, false
	}
	if files == nil {
		return nil, false
	}
	return files, true
}

// Autosave overwrites the draft with files.
func (d *DraftStore) Autosave(storageKey string, files FileSet) error {
	if files == nil {
		files = FileSet{}
	}
	return localstore.SaveJSON(d.store, storageKey, files)
}

// Reset drops the draft and hands back a fresh copy of defaults.
func (d *DraftStore) Reset(storageKey string, defaults FileSet) (FileSet, error) {
	if err := d.store.Delete(storageKey); err != nil {
		return nil, err
	}
	return defaults.Clone(), nil
}

// Exists reports whether a draft entry is present, readable or not.
func (d *DraftStore) Exists(storageKey string) (bool, error) {
	_, ok, err := d.store.Get(storageKey)
	return ok, err
}
