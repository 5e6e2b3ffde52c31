package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// AnalysisCache 分析结果缓存，每个条目都有明确的过期时间
type AnalysisCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID uint) error
}

// CacheKey 形如 prefix:user:part1:part2，InvalidateUser 依赖这个格式
func CacheKey(prefix string, userID uint, parts ...string) string {
	key := fmt.Sprintf("%s:%d", prefix, userID)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

type RedisAnalysisCache struct {
	rdb *redis.Client
}

func NewRedisAnalysisCache(rdb *redis.Client) *RedisAnalysisCache {
	return &RedisAnalysisCache{rdb: rdb}
}

func (c *RedisAnalysisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisAnalysisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// InvalidateUser 用 SCAN 删除该用户的全部分析缓存
func (c *RedisAnalysisCache) InvalidateUser(ctx context.Context, userID uint) error {
	pattern := fmt.Sprintf("analysis:*:%d:*", userID)
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	// 不带日期后缀的键（如连续记录）也要删除
	keys = append(keys,
		fmt.Sprintf("analysis:streak:%d", userID),
	)
	return c.rdb.Del(ctx, keys...).Err()
}

type memoryEntry struct {
	raw       []byte
	userID    uint
	expiresAt time.Time
}

// MemoryAnalysisCache 未配置 Redis 时使用的进程内缓存，读取时淘汰过期条目
type MemoryAnalysisCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryAnalysisCache() *MemoryAnalysisCache {
	return &MemoryAnalysisCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryAnalysisCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.raw, dest)
}

func (c *MemoryAnalysisCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{raw: raw, userID: userFromKey(key), expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryAnalysisCache) InvalidateUser(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if e.userID == userID {
			delete(c.entries, k)
		}
	}
	return nil
}

// userFromKey 取出 analysis:kind:user:... 中的用户 ID
func userFromKey(key string) uint {
	parts := strings.Split(key, ":")
	if len(parts) < 3 {
		return 0
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
