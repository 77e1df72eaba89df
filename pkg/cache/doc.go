// Package cache provides a generic in-memory key-value cache with TTL
// expiration, optional LRU bounds and eviction callbacks.
//
// The query stage stores fetched results in a [Memory] keyed by request key,
// and the viewer registry keeps one session per viewer in a [Memory] whose
// eviction callback tears the session down.
//
// TTL semantics for Set:
//   - Positive duration: the entry expires after this duration
//   - Zero: the configured default TTL is used
//   - Negative: the entry never expires
//
// Eviction callbacks run after the cache lock is released, so a callback may
// call back into the cache:
//
//	sessions := cache.NewMemory[*Session](cache.WithDefaultTTL(30 * time.Minute))
//	sessions.SetEvictCallback(func(key string, s *Session) {
//	    s.Close()
//	})
//
// [GetOrSet] collapses concurrent misses for the same key into a single call:
//
//	s, err := cache.GetOrSet(ctx, sessions, id, func(ctx context.Context) (*Session, time.Duration, error) {
//	    return newSession(id), 0, nil
//	})
package cache
