package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a list-backed queue: LPUSH to enqueue, BRPOP to consume.
// Multiple worker processes can drain the same key.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, r.key, data).Err()
}

func (r *Redis) Dequeue(ctx context.Context) (Job, error) {
	for {
		res, err := r.client.BRPop(ctx, 5*time.Second, r.key).Result()
		if errors.Is(err, redis.Nil) {
			// poll timeout, try again unless the context is gone
			select {
			case <-ctx.Done():
				return Job{}, ctx.Err()
			default:
				continue
			}
		}
		if err != nil {
			return Job{}, err
		}
		// BRPOP returns [key, value]
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, err
		}
		return job, nil
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
