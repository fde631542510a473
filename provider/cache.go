package provider

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// ProviderCacheEntry represents a cached, initialized provider instance
type ProviderCacheEntry struct {
	Provider     PaymentProvider
	Key          string
	MerchantID   string
	ProviderName string
	Variant      string // environment and configuration fingerprint
	CreatedAt    time.Time
	LastAccessed time.Time
	listElement  *list.Element // For LRU tracking
}

// ProviderCache keeps initialized providers so each call does not rebuild a transport
type ProviderCache interface {
	// Get retrieves a provider from cache, returns nil if not found.
	// variant separates instances built from different configurations.
	Get(merchantID, providerName, variant string) PaymentProvider

	// Set stores a provider in cache
	Set(merchantID, providerName, variant string, provider PaymentProvider)

	// DeleteByMerchantAndProvider removes all entries for a merchant-provider combination
	DeleteByMerchantAndProvider(merchantID, providerName string)

	// Clear removes all entries from cache
	Clear()

	// Size returns the current number of cached entries
	Size() int

	// Stats returns cache statistics
	Stats() CacheStats

	// Cleanup removes expired entries
	Cleanup()
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Size        int           `json:"size"`
	MaxSize     int           `json:"max_size"`
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Evictions   int64         `json:"evictions"`
	TTLExpiries int64         `json:"ttl_expiries"`
	HitRatio    float64       `json:"hit_ratio"`
	TTL         time.Duration `json:"ttl"`
}

// InMemoryProviderCache implements ProviderCache with LRU eviction and a TTL
type InMemoryProviderCache struct {
	entries     map[string]*ProviderCacheEntry
	accessOrder *list.List // most recent at front
	maxSize     int
	ttl         time.Duration
	mu          sync.Mutex

	hits        int64
	misses      int64
	evictions   int64
	ttlExpiries int64
}

// NewProviderCache creates a new in-memory provider cache
func NewProviderCache(maxSize int, ttl time.Duration) ProviderCache {
	return &InMemoryProviderCache{
		entries:     make(map[string]*ProviderCacheEntry),
		accessOrder: list.New(),
		maxSize:     maxSize,
		ttl:         ttl,
	}
}

func generateCacheKey(merchantID, providerName, variant string) string {
	return fmt.Sprintf("%s-%s-%s", merchantID, providerName, variant)
}

// Get retrieves a provider from cache
func (c *InMemoryProviderCache) Get(merchantID, providerName, variant string) PaymentProvider {
	key := generateCacheKey(merchantID, providerName, variant)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil
	}

	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		c.deleteEntryUnsafe(key, entry)
		c.ttlExpiries++
		c.misses++
		return nil
	}

	entry.LastAccessed = time.Now()
	c.accessOrder.MoveToFront(entry.listElement)

	c.hits++
	return entry.Provider
}

// Set stores a provider in cache
func (c *InMemoryProviderCache) Set(merchantID, providerName, variant string, provider PaymentProvider) {
	key := generateCacheKey(merchantID, providerName, variant)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.entries[key]; exists {
		existing.Provider = provider
		existing.CreatedAt = now
		existing.LastAccessed = now
		c.accessOrder.MoveToFront(existing.listElement)
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLRUUnsafe()
	}

	entry := &ProviderCacheEntry{
		Provider:     provider,
		Key:          key,
		MerchantID:   merchantID,
		ProviderName: providerName,
		Variant:      variant,
		CreatedAt:    now,
		LastAccessed: now,
	}
	entry.listElement = c.accessOrder.PushFront(entry)
	c.entries[key] = entry
}

// DeleteByMerchantAndProvider removes all entries for a merchant-provider combination
func (c *InMemoryProviderCache) DeleteByMerchantAndProvider(merchantID, providerName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.MerchantID == merchantID && entry.ProviderName == providerName {
			c.deleteEntryUnsafe(key, entry)
		}
	}
}

// Clear removes all entries from cache
func (c *InMemoryProviderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*ProviderCacheEntry)
	c.accessOrder = list.New()
}

// Size returns the current number of cached entries
func (c *InMemoryProviderCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics
func (c *InMemoryProviderCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRatio := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRatio = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Size:        len(c.entries),
		MaxSize:     c.maxSize,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		TTLExpiries: c.ttlExpiries,
		HitRatio:    hitRatio,
		TTL:         c.ttl,
	}
}

// Cleanup removes expired entries
func (c *InMemoryProviderCache) Cleanup() {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.CreatedAt) > c.ttl {
			c.deleteEntryUnsafe(key, entry)
			c.ttlExpiries++
		}
	}
}

// evictLRUUnsafe removes the least recently used entry (must be called with lock held)
func (c *InMemoryProviderCache) evictLRUUnsafe() {
	lruElement := c.accessOrder.Back()
	if lruElement == nil {
		return
	}

	lruEntry := lruElement.Value.(*ProviderCacheEntry)
	c.deleteEntryUnsafe(lruEntry.Key, lruEntry)
	c.evictions++
}

// deleteEntryUnsafe removes an entry from both map and list (must be called with lock held)
func (c *InMemoryProviderCache) deleteEntryUnsafe(key string, entry *ProviderCacheEntry) {
	delete(c.entries, key)
	if entry.listElement != nil {
		c.accessOrder.Remove(entry.listElement)
	}
}
