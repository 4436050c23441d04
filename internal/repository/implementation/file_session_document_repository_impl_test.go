package implementation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upsertFn(record entity.SubmissionRecord, now time.Time) func(*entity.SessionDocument) (*entity.SessionDocument, error) {
	return func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		if current == nil {
			current = entity.NewSessionDocument("", now)
		}
		current.Upsert(record, now)
		return current, nil
	}
}

func newTestFileRepo(t *testing.T) (*FileSessionDocumentRepository, string) {
	dir := filepath.Join(t.TempDir(), "data")
	return NewFileSessionDocumentRepository(dir, logger.NewNopLogger()), dir
}

func TestFileRepositoryCreatesDirectoryAndDocument(t *testing.T) {
	repo, dir := newTestFileRepo(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	doc, err := repo.Mutate(context.Background(), "abc", func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		assert.Nil(t, current)
		d := entity.NewSessionDocument("abc", now)
		d.Upsert(entity.SubmissionRecord{QuestionId: 1, Files: map[string]string{"/App.js": "x"}}, now)
		return d, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.SubmissionCount())

	raw, err := os.ReadFile(filepath.Join(dir, "question-submission-abc.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"sessionId\": \"abc\""))

	var stored entity.SessionDocument
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "2024-05-01T10:00:00.000Z", stored.StartTime)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", stored.LastUpdated)
}

func TestFileRepositoryReplacesSameQuestion(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Mutate(ctx, "s1", upsertFn(entity.SubmissionRecord{QuestionId: 1, Files: map[string]string{"/a.js": "1", "/b.js": "2"}}, now))
	require.NoError(t, err)
	_, err = repo.Mutate(ctx, "s1", upsertFn(entity.SubmissionRecord{QuestionId: 1, Files: map[string]string{"/a.js": "3"}}, now))
	require.NoError(t, err)

	doc, err := repo.FindBySessionId(ctx, "s1")
	require.NoError(t, err)
	rec, ok := doc.Submission(1)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"/a.js": "3"}, rec.Files)
	assert.Equal(t, 1, doc.SubmissionCount())
}

func TestFileRepositoryKeepsOtherQuestions(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx := context.Background()

	_, err := repo.Mutate(ctx, "s1", upsertFn(entity.SubmissionRecord{QuestionId: 1}, time.Now()))
	require.NoError(t, err)
	_, err = repo.Mutate(ctx, "s1", upsertFn(entity.SubmissionRecord{QuestionId: 2}, time.Now()))
	require.NoError(t, err)

	doc, err := repo.FindBySessionId(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SubmissionCount())
}

func TestFileRepositoryPreservesCorruptDocument(t *testing.T) {
	repo, dir := newTestFileRepo(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := repo.Path("s1")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	doc, err := repo.Mutate(context.Background(), "s1", func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		assert.Nil(t, current)
		return upsertFn(entity.SubmissionRecord{QuestionId: 3}, time.Now())(current)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.SubmissionCount())

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	preserved, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(preserved))
}

func TestFileRepositoryFindMissingSession(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	doc, err := repo.FindBySessionId(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFileRepositoryConcurrentUpsertsAreNotLost(t *testing.T) {
	repo, dir := newTestFileRepo(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(qid int) {
			defer wg.Done()
			_, err := repo.Mutate(ctx, "busy", upsertFn(entity.SubmissionRecord{QuestionId: qid}, time.Now()))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := repo.FindBySessionId(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, writers, doc.SubmissionCount())
	assert.Equal(t, 0, repo.locks.size())

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSessionLocksHonourContext(t *testing.T) {
	locks := newSessionLocks()
	unlock, err := locks.Lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Equal(t, 0, locks.size())
}

func TestFileRepositoryMergesIntoLooselyShapedDocument(t *testing.T) {
	repo, dir := newTestFileRepo(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := repo.Path("s1")
	prior := `{
  "sessionId": "s1",
  "startTime": "2024-01-01T09:00:00.000Z",
  "notes": "keep",
  "submissions": {
    "1": {"questionId": 1, "template": "react", "files": {"/App.js": {"code": "x"}}, "score": 7}
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(prior), 0o644))

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	doc, err := repo.Mutate(context.Background(), "s1", func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		require.NotNil(t, current)
		assert.Equal(t, "x", current.Submissions["1"].Files["/App.js"])
		return upsertFn(entity.SubmissionRecord{QuestionId: 2, Files: map[string]string{"/index.js": "y"}}, now)(current)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SubmissionCount())

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Empty(t, matches)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "keep", stored["notes"])
	assert.Equal(t, "2024-01-01T09:00:00.000Z", stored["startTime"])
	assert.Equal(t, "2024-01-01T10:00:00.000Z", stored["lastUpdated"])

	submissions := stored["submissions"].(map[string]interface{})
	first := submissions["1"].(map[string]interface{})
	assert.Equal(t, float64(7), first["score"])
	assert.Equal(t, map[string]interface{}{"code": "x"}, first["files"].(map[string]interface{})["/App.js"])
	assert.Contains(t, submissions, "2")
}

func TestFileRepositoryQuarantinesNonObjectDocument(t *testing.T) {
	repo, dir := newTestFileRepo(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := repo.Path("s1")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644))

	_, err := repo.Mutate(context.Background(), "s1", func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		assert.Nil(t, current)
		return upsertFn(entity.SubmissionRecord{QuestionId: 1}, time.Now())(current)
	})
	require.NoError(t, err)

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
