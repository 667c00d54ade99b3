package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yashrajoria/catalog-import-service/models"

	"github.com/go-redis/redis/v8"
)

const (
	jobKeyPrefix = "bulk_import:job:"
	jobQueueKey  = "bulk_import:queue"
	jobTTL       = 24 * time.Hour
)

// RedisJobStore keeps job metadata as JSON under bulk_import:job:<id> for 24h.
type RedisJobStore struct {
	redis *redis.Client
}

func NewRedisJobStore(rdb *redis.Client) *RedisJobStore {
	return &RedisJobStore{redis: rdb}
}

func jobKey(id string) string { return jobKeyPrefix + id }

func (s *RedisJobStore) Save(ctx context.Context, job *models.ImportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job metadata: %w", err)
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	val, err := s.redis.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job metadata: %w", err)
	}
	var job models.ImportJob
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, fmt.Errorf("failed to parse job metadata: %w", err)
	}
	return &job, nil
}

func (s *RedisJobStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, jobKey(id)).Err()
}

// RedisJobQueue is a FIFO list of job IDs.
type RedisJobQueue struct {
	redis *redis.Client
}

func NewRedisJobQueue(rdb *redis.Client) *RedisJobQueue {
	return &RedisJobQueue{redis: rdb}
}

func (q *RedisJobQueue) Push(ctx context.Context, jobID string) error {
	if err := q.redis.RPush(ctx, jobQueueKey, jobID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

func (q *RedisJobQueue) Pop(ctx context.Context) (string, error) {
	res, err := q.redis.BLPop(ctx, 0, jobQueueKey).Result()
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}
	return res[1], nil
}
