package services

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru"
)

// ImageCache wraps an AssetStore with a bounded LRU over fetched image
// bytes. Capacity is an entry count set from config; eviction is handled
// by the cache, so memory stays bounded no matter how large the catalog
// grows. Listing calls pass through uncached.
type ImageCache struct {
	store AssetStore
	cache *lru.Cache
}

func NewImageCache(store AssetStore, size int) (*ImageCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}
	return &ImageCache{store: store, cache: cache}, nil
}

func (c *ImageCache) Categories(ctx context.Context) ([]string, error) {
	return c.store.Categories(ctx)
}

func (c *ImageCache) Series(ctx context.Context, category string) ([]string, error) {
	return c.store.Series(ctx, category)
}

func (c *ImageCache) Images(ctx context.Context, category, series string) ([]string, error) {
	return c.store.Images(ctx, category, series)
}

func (c *ImageCache) Fetch(ctx context.Context, category, series, filename string) ([]byte, error) {
	key := category + "/" + series + "/" + filename
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]byte), nil
	}

	data, err := c.store.Fetch(ctx, category, series, filename)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, data)
	slog.Debug("Image cached",
		slog.String("type", "assets"),
		slog.String("key", key),
		slog.Int("size_bytes", len(data)),
		slog.Int("cache_entries", c.cache.Len()),
	)
	return data, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.cache.Len()
}
