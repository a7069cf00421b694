package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// CategoryCache caches categories from a backing QuestionRepository in Redis
// and falls back to the backing store on a miss.
// Each category is stored as one JSON string: SET category:{name} {json} EX ttl
// category-gen:{name} is bumped on every invalidation. A refill only writes
// while the generation it started under is still current (WATCH).
type CategoryCache struct {
	client  *redis.Client
	backing app.QuestionRepository
	ttl     time.Duration
	log     *zap.Logger
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCategoryCache(client *redis.Client, backing app.QuestionRepository, ttl time.Duration, log *zap.Logger) *CategoryCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
		log:     log,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListCategories always reads the backing store so new categories show up at once.
func (c *CategoryCache) ListCategories(ctx context.Context) ([]string, error) {
	return c.backing.ListCategories(ctx)
}

func (c *CategoryCache) GetCategory(ctx context.Context, name string) (domain.Category, error) {
	key := categoryKey(name)
	if category, ok := c.cached(ctx, key); ok {
		return category, nil
	}

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if category, ok := c.cached(ctx, key); ok {
			return category, nil
		}

		gen, err := c.generation(ctx, c.client, name)
		if err != nil {
			c.log.Warn("category generation read failed", zap.String("category", name), zap.Error(err))
		}
		category, err := c.backing.GetCategory(ctx, name)
		if err != nil {
			return domain.Category{}, err
		}
		if gen < 0 {
			return category, nil
		}

		payload, err := json.Marshal(category)
		if err != nil {
			return domain.Category{}, err
		}
		if err := c.store(ctx, name, gen, payload); err != nil {
			c.log.Warn("category cache write failed", zap.String("category", name), zap.Error(err))
		}
		return category, nil
	})
	if err != nil {
		return domain.Category{}, err
	}
	return result.(domain.Category).Clone(), nil
}

func (c *CategoryCache) AppendQuestion(ctx context.Context, category string, q domain.Question) error {
	if err := c.backing.AppendQuestion(ctx, category, q); err != nil {
		return err
	}
	return c.Invalidate(ctx, category)
}

// Invalidate drops the cached copy of a category and bumps its generation so
// refills already in flight are discarded.
func (c *CategoryCache) Invalidate(ctx context.Context, name string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, categoryKey(name))
		pipe.Incr(ctx, generationKey(name))
		return nil
	})
	return err
}

// store writes the payload unless the category was invalidated after gen was read.
func (c *CategoryCache) store(ctx context.Context, name string, gen int64, payload []byte) error {
	genKey := generationKey(name)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, name)
		if err != nil {
			return err
		}
		if current != gen {
			c.log.Debug("skipping stale category refill", zap.String("category", name))
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, categoryKey(name), payload, c.ttlWithJitter())
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		c.log.Debug("category invalidated during refill", zap.String("category", name))
		return nil
	}
	return err
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// generation returns -1 with the error when the counter cannot be read.
func (c *CategoryCache) generation(ctx context.Context, cmd getter, name string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(name)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return -1, err
	}
	return gen, nil
}

func (c *CategoryCache) cached(ctx context.Context, key string) (domain.Category, bool) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("category cache read failed", zap.String("key", key), zap.Error(err))
		}
		return domain.Category{}, false
	}
	var category domain.Category
	if err := json.Unmarshal(payload, &category); err != nil {
		c.log.Warn("category cache entry corrupt", zap.String("key", key), zap.Error(err))
		return domain.Category{}, false
	}
	return category, true
}

func categoryKey(name string) string {
	return "category:" + name
}

func generationKey(name string) string {
	return "category-gen:" + name
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
