package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"trustbyte/domain"
)

type backend interface {
	FetchTasks(ctx context.Context, owner string) ([]domain.Task, error)
	InsertTask(ctx context.Context, t domain.Task) (domain.Task, error)
	ReplaceTask(ctx context.Context, t domain.Task) (bool, error)
	DeleteTask(ctx context.Context, id primitive.ObjectID, owner string) (bool, error)
}

// Cache wraps a Storage instance with Redis-backed caching of per-user task
// lists. Any mutation evicts the owner's cached list so the next fetch reads
// through to MongoDB.
type Cache struct {
	*Storage
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
// A nil client degrades to a passthrough.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	c := &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
	if s, ok := base.(*Storage); ok {
		c.Storage = s
	}
	return c
}

func (c *Cache) FetchTasks(ctx context.Context, owner string) ([]domain.Task, error) {
	if tasks, ok := c.loadFromCache(ctx, owner); ok {
		return tasks, nil
	}

	tasks, err := c.base.FetchTasks(ctx, owner)
	if err != nil {
		return nil, err
	}

	c.store(ctx, owner, tasks)
	return tasks, nil
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	created, err := c.base.InsertTask(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx, created.User)
	return created, nil
}

func (c *Cache) ReplaceTask(ctx context.Context, t domain.Task) (bool, error) {
	found, err := c.base.ReplaceTask(ctx, t)
	if err != nil {
		return false, err
	}
	if found {
		c.evict(ctx, t.User)
	}
	return found, nil
}

func (c *Cache) DeleteTask(ctx context.Context, id primitive.ObjectID, owner string) (bool, error) {
	found, err := c.base.DeleteTask(ctx, id, owner)
	if err != nil {
		return false, err
	}
	if found {
		c.evict(ctx, owner)
	}
	return found, nil
}

func (c *Cache) loadFromCache(ctx context.Context, owner string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(owner)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, tasksCacheKey(owner)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(owner)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) store(ctx context.Context, owner string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey(owner), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, owner string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, tasksCacheKey(owner)).Result()
}

func tasksCacheKey(owner string) string {
	return "tasks:" + owner
}
