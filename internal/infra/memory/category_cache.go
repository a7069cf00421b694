package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// CategoryCache caches categories from a slower QuestionRepository (e.g.
// Postgres) with a TTL. Appends go straight to the backing store and drop the
// cached copy of that category.
type CategoryCache struct {
	backing app.QuestionRepository
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand
	rndMu   sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCategory
	// gen counts invalidations per category; a refill started under an older
	// generation is not stored.
	gen map[string]uint64
}

type cachedCategory struct {
	category  domain.Category
	expiresAt time.Time
}

func NewCategoryCache(backing app.QuestionRepository, ttl time.Duration) *CategoryCache {
	return &CategoryCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedCategory),
		gen:     make(map[string]uint64),
	}
}

// ListCategories is not cached: the list is small and must reflect new
// categories immediately.
func (c *CategoryCache) ListCategories(ctx context.Context) ([]string, error) {
	return c.backing.ListCategories(ctx)
}

func (c *CategoryCache) GetCategory(ctx context.Context, name string) (domain.Category, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[name]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.category.Clone(), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(name, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[name]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.category, nil
		}
		gen := c.gen[name]
		c.mu.RUnlock()

		category, err := c.backing.GetCategory(ctx, name)
		if err != nil {
			return domain.Category{}, err
		}

		c.mu.Lock()
		if c.gen[name] == gen {
			c.cache[name] = cachedCategory{
				category:  category,
				expiresAt: now.Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
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
	c.Invalidate(category)
	return nil
}

// Invalidate drops the cached copy of a category.
func (c *CategoryCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.cache, name)
	c.gen[name]++
	c.mu.Unlock()
}

func (c *CategoryCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
