package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
)

// JobCache keeps the last finished job in Redis so other processes can read it.
type JobCache struct {
	client RedisClient
	key    string
	ttl    time.Duration
}

func NewJobCache(client RedisClient, key string, ttl time.Duration) *JobCache {
	return &JobCache{client: client, key: key, ttl: ttl}
}

func (c *JobCache) Name() string { return "redis" }

// Publish stores job under the cache key and under a per-job key, atomically.
func (c *JobCache) Publish(ctx context.Context, job model.PredictionJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return c.client.SetAll(ctx, map[string]interface{}{
		c.jobKey(job.ID): data,
		c.key:            data,
	}, c.ttl)
}

// Last returns the most recently published job.
func (c *JobCache) Last(ctx context.Context) (*model.PredictionJob, error) {
	return c.load(ctx, c.key)
}

func (c *JobCache) Get(ctx context.Context, id string) (*model.PredictionJob, error) {
	return c.load(ctx, c.jobKey(id))
}

func (c *JobCache) load(ctx context.Context, key string) (*model.PredictionJob, error) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var job model.PredictionJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	if job.Result != nil {
		job.Result.Batch = job.Input.Batch
	}
	return &job, nil
}

func (c *JobCache) jobKey(id string) string {
	return fmt.Sprintf("%s:%s", c.key, id)
}

func (c *JobCache) Close() error { return c.client.Close() }
