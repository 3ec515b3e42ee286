package sync

import (
	"sync"
)

// DefaultShards is the shard count used by NewShardedMutex.
const DefaultShards = 64

// ShardedMutex provides per-key exclusion without a global lock.
// Keys are hashed onto a fixed set of mutexes, so operations on different
// entities proceed in parallel unless their keys share a shard.
type ShardedMutex struct {
	shards []sync.Mutex
}

// NewShardedMutex creates a ShardedMutex with DefaultShards shards.
func NewShardedMutex() *ShardedMutex {
	return NewShardedMutexN(DefaultShards)
}

// NewShardedMutexN creates a ShardedMutex with n shards (minimum 1).
func NewShardedMutexN(n int) *ShardedMutex {
	if n < 1 {
		n = 1
	}
	return &ShardedMutex{shards: make([]sync.Mutex, n)}
}

// Lock acquires the lock for the given key's shard.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the lock for the given key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// WithLock runs fn while holding the key's shard lock.
func (m *ShardedMutex) WithLock(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// Shards reports the number of shards.
func (m *ShardedMutex) Shards() int {
	return len(m.shards)
}

// shardFor returns the shard index for the given key. Empty keys use shard 0.
func (m *ShardedMutex) shardFor(key string) int {
	if key == "" {
		return 0
	}
	return int(fnv32a(key) % uint32(len(m.shards)))
}

// fnv32a is the 32-bit FNV-1a hash.
func fnv32a(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}
	return h
}
