package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/implementation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSessionsMergesIntoDestination(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := implementation.NewFileSessionDocumentRepository(srcDir, log)
	dst := implementation.NewFileSessionDocumentRepository(dstDir, log)

	put := func(repo *implementation.FileSessionDocumentRepository, sessionId string, rec entity.SubmissionRecord, at time.Time) {
		_, err := repo.Mutate(ctx, sessionId, func(cur *entity.SessionDocument) (*entity.SessionDocument, error) {
			if cur == nil {
				cur = entity.NewSessionDocument(sessionId, at)
			}
			cur.Upsert(rec, at)
			return cur, nil
		})
		require.NoError(t, err)
	}

	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	put(src, "a", entity.SubmissionRecord{QuestionId: 1, SubmissionDate: entity.FormatTimestamp(t0)}, t0)
	put(src, "b", entity.SubmissionRecord{QuestionId: 2, SubmissionDate: entity.FormatTimestamp(t0)}, t0)
	put(dst, "a", entity.SubmissionRecord{QuestionId: 3, SubmissionDate: entity.FormatTimestamp(t0.Add(time.Hour))}, t0.Add(time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "question-submission-broken.json"), []byte("{"), 0o644))

	n, err := importSessions(ctx, srcDir, dst, src)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, err := dst.FindBySessionId(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 2, a.SubmissionCount())
	assert.Equal(t, entity.FormatTimestamp(t0), a.StartTime)

	b, err := dst.FindBySessionId(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 1, b.SubmissionCount())
}
