// Package locking provides per-key serialization for ledger mutations.
// Each ledger runs its read-modify-write cycles under the shard owning the
// key, so balance and state-machine invariants hold under concurrency
// without a single global lock.
package locking

import "sync"

// numShards balances memory against contention; 128 shards keeps unrelated
// keys from serializing behind each other under load.
const numShards = 128

// KeyedMutex serializes critical sections per string key using sharded
// mutexes. Two goroutines locking the same key are mutually exclusive;
// different keys usually proceed in parallel.
type KeyedMutex struct {
	shards [numShards]sync.Mutex
}

// Do runs fn while holding the shard lock for key.
func (m *KeyedMutex) Do(key string, fn func() error) error {
	shard := &m.shards[hashString(key)%numShards]
	shard.Lock()
	defer shard.Unlock()
	return fn()
}

// hashString uses FNV-1a for even shard distribution.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
