package integration

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/implementation"
	"interview-practice-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv() {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
}

func upsert(sessionId string, questionId int) contract.MutateFunc {
	return func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		now := time.Now()
		if current == nil {
			current = entity.NewSessionDocument(sessionId, now)
		}
		current.Upsert(entity.SubmissionRecord{
			QuestionId:     questionId,
			Submitted:      true,
			SubmissionDate: entity.FormatTimestamp(now),
			Files:          map[string]string{"/App.js": "// q" + entity.QuestionKey(questionId)},
		}, now)
		return current, nil
	}
}

// exerciseLedger checks the upsert contract every backend must honour.
func exerciseLedger(t *testing.T, repo contract.SessionDocumentRepository) {
	ctx := context.Background()
	sessionId := uuid.NewString()

	missing, err := repo.FindBySessionId(ctx, sessionId)
	require.NoError(t, err)
	assert.Nil(t, missing)

	var wg sync.WaitGroup
	for q := 1; q <= 8; q++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, err := repo.Mutate(ctx, sessionId, upsert(sessionId, q))
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	_, err = repo.Mutate(ctx, sessionId, upsert(sessionId, 1))
	require.NoError(t, err)

	doc, err := repo.FindBySessionId(ctx, sessionId)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, 8, doc.SubmissionCount())
	assert.NotEmpty(t, doc.StartTime)
	assert.NotEmpty(t, doc.LastUpdated)
}

func TestPostgresLedger(t *testing.T) {
	loadEnv()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	repo, err := implementation.NewGormSessionDocumentRepository(db, logger.NewNopLogger())
	require.NoError(t, err)
	defer repo.Close()

	exerciseLedger(t, repo)
}

func TestRedisLedger(t *testing.T) {
	loadEnv()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(context.Background()).Err())

	repo := implementation.NewRedisSessionDocumentRepository(rdb, logger.NewNopLogger())
	exerciseLedger(t, repo)

	ctx := context.Background()
	sessionId := uuid.NewString()
	key := implementation.RedisDocumentKey(sessionId)
	defer rdb.Del(ctx, key)
	prior := `{"sessionId":"` + sessionId + `","startTime":"2024-01-01T00:00:00.000Z","notes":"keep",` +
		`"submissions":{"1":{"questionId":1,"files":{"/App.js":{"code":"x"}}}}}`
	require.NoError(t, rdb.Set(ctx, key, prior, 0).Err())

	doc, err := repo.Mutate(ctx, sessionId, upsert(sessionId, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.SubmissionCount())

	stored, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stored), &raw))
	assert.Equal(t, "keep", raw["notes"])
	first := raw["submissions"].(map[string]interface{})["1"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"code": "x"}, first["files"].(map[string]interface{})["/App.js"])
}
