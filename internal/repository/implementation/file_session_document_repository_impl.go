package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"
)

// FileSessionDocumentRepository keeps one pretty-printed JSON file per session
// under dataDir, named question-submission-<sessionId>.json.
type FileSessionDocumentRepository struct {
	dataDir string
	locks   *sessionLocks
	logger  logger.ILogger
}

func NewFileSessionDocumentRepository(dataDir string, log logger.ILogger) *FileSessionDocumentRepository {
	return &FileSessionDocumentRepository{
		dataDir: dataDir,
		locks:   newSessionLocks(),
		logger:  log,
	}
}

var _ contract.SessionDocumentRepository = (*FileSessionDocumentRepository)(nil)

func (r *FileSessionDocumentRepository) Path(sessionId string) string {
	return filepath.Join(r.dataDir, entity.DocumentFilename(sessionId))
}

func (r *FileSessionDocumentRepository) Mutate(ctx context.Context, sessionId string, fn contract.MutateFunc) (*entity.SessionDocument, error) {
	unlock, err := r.locks.Lock(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sessionId, err)
	}
	defer unlock()

	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	current := r.load(sessionId)

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	if err := r.write(sessionId, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (r *FileSessionDocumentRepository) FindBySessionId(ctx context.Context, sessionId string) (*entity.SessionDocument, error) {
	data, err := os.ReadFile(r.Path(sessionId))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var doc *entity.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entity.DocumentFilename(sessionId), err)
	}
	return doc, nil
}

func (r *FileSessionDocumentRepository) Close() error {
	return nil
}

// load returns the stored document, or nil when there is none or it cannot be
// used. Undecodable files are moved aside before the caller overwrites them.
func (r *FileSessionDocumentRepository) load(sessionId string) *entity.SessionDocument {
	path := r.Path(sessionId)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("Ledger", "Session document unreadable, starting fresh", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
		return nil
	}

	var doc *entity.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		quarantined := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
		if renameErr := os.Rename(path, quarantined); renameErr != nil {
			quarantined = ""
			r.logger.Error("Ledger", "Failed to preserve corrupt session document", map[string]interface{}{
				"session_id": sessionId,
				"error":      renameErr.Error(),
			})
		}
		r.logger.Warn("Ledger", "Session document corrupt, starting fresh", map[string]interface{}{
			"session_id":   sessionId,
			"error":        err.Error(),
			"preserved_as": quarantined,
		})
		return nil
	}
	return doc
}

// write replaces the document via a temp file + rename, so readers never see
// a half-written file.
func (r *FileSessionDocumentRepository) write(sessionId string, doc *entity.SessionDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session document: %w", err)
	}

	path := r.Path(sessionId)
	tmp, err := os.CreateTemp(r.dataDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync session document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod session document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session document: %w", err)
	}
	return nil
}
