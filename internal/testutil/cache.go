package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/whatsyourrecipe/backend/internal/cache"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

// MemoryCache is a cache.Cache that keeps JSON values in a map. TTLs are
// recorded but never enforced.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	TTLs map[string]time.Duration

	Hits   int
	Misses int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		c.Misses++
		return false, nil
	}
	c.Hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.TTLs[key] = ttl
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.TTLs, k)
	}
	return nil
}

// Has reports whether key is present.
func (c *MemoryCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

var _ cache.Cache = (*MemoryCache)(nil)

// FirebaseVerifier accepts the ID tokens registered in Tokens.
type FirebaseVerifier struct {
	Tokens map[string]*auth.Token
}

func NewFirebaseVerifier() *FirebaseVerifier {
	return &FirebaseVerifier{Tokens: make(map[string]*auth.Token)}
}

// Add registers idToken as a valid token for uid with the given email.
func (f *FirebaseVerifier) Add(idToken, uid, email string) {
	claims := map[string]interface{}{}
	if email != "" {
		claims["email"] = email
	}
	f.Tokens[idToken] = &auth.Token{UID: uid, Claims: claims}
}

func (f *FirebaseVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if t, ok := f.Tokens[idToken]; ok {
		return t, nil
	}
	return nil, repositories.ErrNotFound
}
