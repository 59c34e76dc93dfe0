// Package cache wraps the task store with a Redis read-through cache for listings.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

var _ model.TaskStore = (*TaskCache)(nil)

// TaskCache caches Find results per owner. Listings are stored under the owner's
// current generation and every mutation bumps it, so a page read before a write
// is never served after it.
type TaskCache struct {
	base   model.TaskStore
	redis  *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

type page struct {
	Tasks []model.Task `json:"tasks"`
	Total int          `json:"total"`
}

// NewTaskCache wraps base. A nil client or a zero ttl turns the cache into a pass-through.
func NewTaskCache(base model.TaskStore, client *redis.Client, ttl time.Duration, logger *logger.Logger) *TaskCache {
	if ttl < 0 {
		ttl = 0
	}
	return &TaskCache{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *TaskCache) Create(ctx context.Context, task model.Task) (model.Task, error) {
	saved, err := c.base.Create(ctx, task)
	if err != nil {
		return model.Task{}, err
	}
	c.evict(ctx, task.OwnerID)
	return saved, nil
}

func (c *TaskCache) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (model.Task, error) {
	return c.base.GetByIDAndOwner(ctx, id, ownerID)
}

func (c *TaskCache) Update(ctx context.Context, task model.Task) (model.Task, error) {
	saved, err := c.base.Update(ctx, task)
	if err != nil {
		return model.Task{}, err
	}
	c.evict(ctx, task.OwnerID)
	return saved, nil
}

func (c *TaskCache) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := c.base.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}
	c.evict(ctx, ownerID)
	return nil
}

func (c *TaskCache) Find(ctx context.Context, filter model.TaskFilter) ([]model.Task, int, error) {
	if !c.enabled() {
		return c.base.Find(ctx, filter)
	}

	gen, err := c.generation(ctx, filter.OwnerID)
	if err != nil {
		c.logger.Warn("Task cache: failed to read generation", "owner_id", filter.OwnerID, "error", err)
		return c.base.Find(ctx, filter)
	}
	field := listingField(gen, filter)

	if p, ok := c.load(ctx, filter.OwnerID, field); ok {
		return p.Tasks, p.Total, nil
	}

	tasks, total, err := c.base.Find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	c.store(ctx, filter.OwnerID, field, page{Tasks: tasks, Total: total})
	return tasks, total, nil
}

func (c *TaskCache) enabled() bool {
	return c.redis != nil && c.ttl > 0
}

// generation returns the owner's listing generation, 0 if no mutation was recorded yet.
func (c *TaskCache) generation(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *TaskCache) load(ctx context.Context, ownerID uuid.UUID, field string) (page, bool) {
	key := ownerKey(ownerID)
	data, err := c.redis.HGet(ctx, key, field).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Task cache: failed to read listing", "owner_id", ownerID, "error", err)
		}
		return page{}, false
	}

	var p page
	if err := sonic.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Task cache: dropping undecodable listing", "owner_id", ownerID, "error", err)
		c.redis.HDel(ctx, key, field)
		return page{}, false
	}
	return p, true
}

func (c *TaskCache) store(ctx context.Context, ownerID uuid.UUID, field string, p page) {
	data, err := sonic.Marshal(p)
	if err != nil {
		return
	}

	key := ownerKey(ownerID)
	pipe := c.redis.TxPipeline()
	pipe.HSet(ctx, key, field, data)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Task cache: failed to store listing", "owner_id", ownerID, "error", err)
	}
}

// evict bumps the owner's generation and drops the listings stored so far.
// A listing computed before the bump can still be written afterwards, but only
// under the old generation, where no reader looks for it.
func (c *TaskCache) evict(ctx context.Context, ownerID uuid.UUID) {
	if c.redis == nil {
		return
	}
	pipe := c.redis.TxPipeline()
	pipe.Incr(ctx, generationKey(ownerID))
	pipe.Del(ctx, ownerKey(ownerID))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Task cache: failed to evict listings", "owner_id", ownerID, "error", err)
	}
}

func ownerKey(ownerID uuid.UUID) string {
	return "tasks:" + ownerID.String()
}

func generationKey(ownerID uuid.UUID) string {
	return ownerKey(ownerID) + ":gen"
}

func listingField(gen int64, filter model.TaskFilter) string {
	return strconv.FormatInt(gen, 10) + "|" + filter.Key()
}
