package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cache defines the interface for TTL caching. Entries older than their
// TTL are treated as absent; no eviction ordering is guaranteed.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PathKey derives the cache key for a path-discovery result from the
// sorted candidate URI sets and the hop depth. Order of the input sets
// must not affect the key.
func PathKey(subjectURIs, objectURIs []string, maxHops int) string {
	s := append([]string(nil), subjectURIs...)
	o := append([]string(nil), objectURIs...)
	sort.Strings(s)
	sort.Strings(o)

	h := sha256.Sum256([]byte(strings.Join(s, "\x1f") + "\x1e" + strings.Join(o, "\x1f") + "\x1e" + strconv.Itoa(maxHops)))
	return "factgraph:paths:v1:" + hex.EncodeToString(h[:])
}

// LinkKey derives the cache key for an entity-linking result
func LinkKey(surface string, topK int) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(surface)) + "\x1e" + strconv.Itoa(topK)))
	return "factgraph:link:v1:" + hex.EncodeToString(h[:])
}
