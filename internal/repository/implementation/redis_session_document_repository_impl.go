package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const (
	redisDocumentKeyPrefix = "interview:submission:"
	redisMaxTxRetries      = 10
)

// RedisSessionDocumentRepository stores each session document as one JSON
// string and updates it with WATCH/MULTI, retrying when another writer wins.
type RedisSessionDocumentRepository struct {
	rdb    *redis.Client
	logger logger.ILogger
}

func NewRedisSessionDocumentRepository(rdb *redis.Client, log logger.ILogger) *RedisSessionDocumentRepository {
	return &RedisSessionDocumentRepository{rdb: rdb, logger: log}
}

var _ contract.SessionDocumentRepository = (*RedisSessionDocumentRepository)(nil)

func RedisDocumentKey(sessionId string) string {
	return redisDocumentKeyPrefix + sessionId
}

func (r *RedisSessionDocumentRepository) Mutate(ctx context.Context, sessionId string, fn contract.MutateFunc) (*entity.SessionDocument, error) {
	key := RedisDocumentKey(sessionId)

	for attempt := 0; attempt < redisMaxTxRetries; attempt++ {
		var result *entity.SessionDocument

		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			var current *entity.SessionDocument
			var corrupt []byte
			if err == nil {
				if uerr := json.Unmarshal(raw, &current); uerr != nil {
					r.logger.Warn("Ledger", "Session document corrupt, starting fresh", map[string]interface{}{
						"session_id": sessionId,
						"error":      uerr.Error(),
					})
					current = nil
					corrupt = raw
				}
			}

			next, err := fn(current)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(next, "", "  ")
			if err != nil {
				return fmt.Errorf("encode session document: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if corrupt != nil {
					pipe.Set(ctx, fmt.Sprintf("%s:corrupt:%d", key, time.Now().UnixNano()), corrupt, 0)
				}
				pipe.Set(ctx, key, data, 0)
				return nil
			})
			if err != nil {
				return err
			}
			result = next
			return nil
		}, key)

		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug("Ledger", "Optimistic transaction lost, retrying", map[string]interface{}{
				"session_id": sessionId,
				"attempt":    attempt + 1,
			})
			continue
		}
		return nil, err
	}

	return nil, contract.ErrConcurrentUpdate
}

func (r *RedisSessionDocumentRepository) FindBySessionId(ctx context.Context, sessionId string) (*entity.SessionDocument, error) {
	raw, err := r.rdb.Get(ctx, RedisDocumentKey(sessionId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var doc *entity.SessionDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	return doc, nil
}

func (r *RedisSessionDocumentRepository) Close() error {
	return nil
}
