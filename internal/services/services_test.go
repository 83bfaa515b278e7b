package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/fuego-api/internal/auth"
	"github.com/isdelr/fuego-api/internal/database"
	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/store"
)

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	db, err := database.New(t.Context(), database.SQLite, filepath.Join(t.TempDir(), "db.sqlite"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(t.Context(), db, database.SQLite))
	return store.NewSQLStore(db, database.SQLite)
}

func newUserService(s store.Users) *UserService {
	return NewUserService(s, auth.BcryptHasher{Cost: bcrypt.MinCost}, auth.NewTokenCodec("FUEGO_TEST", 0))
}

func register(t *testing.T, svc *UserService, first, email string) models.User {
	t.Helper()
	user, err := svc.Register(t.Context(), RegisterInput{First: first, Last: "Test", Email: email, Password: "123456"})
	require.NoError(t, err)
	return user
}

type published struct {
	userID  int64
	action  string
	payload any
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []published
}

func (n *recordingNotifier) Publish(userID int64, action string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, published{userID, action, payload})
}

func (n *recordingNotifier) actions() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.msgs {
		out = append(out, m.action)
	}
	return out
}

type cacheKey struct{ userID, gen int64 }

// mapCache is an in-memory TaskLists with the same generation rules as Redis.
type mapCache struct {
	mu      sync.Mutex
	gens    map[int64]int64
	entries map[cacheKey][]models.Task
	hits    int
}

func newMapCache() *mapCache {
	return &mapCache{gens: map[int64]int64{}, entries: map[cacheKey][]models.Task{}}
}

func (c *mapCache) Get(_ context.Context, userID int64) ([]models.Task, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[userID]
	tasks, ok := c.entries[cacheKey{userID, gen}]
	if ok {
		c.hits++
	}
	return tasks, gen, ok
}

func (c *mapCache) Set(_ context.Context, userID, gen int64, tasks []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{userID, gen}] = tasks
}

func (c *mapCache) Invalidate(_ context.Context, userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
}

// gatedCache parks the first Set until release is closed.
type gatedCache struct {
	*mapCache
	once    sync.Once
	reached chan struct{}
	release chan struct{}
}

func newGatedCache() *gatedCache {
	return &gatedCache{mapCache: newMapCache(), reached: make(chan struct{}), release: make(chan struct{})}
}

func (c *gatedCache) Set(ctx context.Context, userID, gen int64, tasks []models.Task) {
	first := false
	c.once.Do(func() { first = true })
	if first {
		close(c.reached)
		<-c.release
	}
	c.mapCache.Set(ctx, userID, gen, tasks)
}
