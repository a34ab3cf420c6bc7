// Package multires implements the MultiResImage container: a mapping from
// (resolution-tag, date) to an owned Image.
package multires

import (
	"sort"
	"sync"

	"github.com/airbusgeo/imagefusion/internal/ferr"
	"github.com/airbusgeo/imagefusion/pixel"
)

type key struct {
	tag  string
	date int64
}

// Container is the caller-owned, non-owning-reference-held-by-fusors MultiResImage.
// It is guarded by a RWMutex so a caller may drive several fusors concurrently over
// disjoint containers while each fusor's own reads race-check cleanly against the
// rare concurrent `has`/`get` from orchestration code; the caller is still
// responsible for not mutating a Container concurrently with a Predict call that
// reads it.
type Container struct {
	mu     sync.RWMutex
	images map[key]*pixel.Image
}

// New returns an empty Container.
func New() *Container {
	return &Container{images: make(map[key]*pixel.Image)}
}

// Has reports whether an image is present for (tag, date).
func (c *Container) Has(tag string, date int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.images[key{tag, date}]
	return ok
}

// Get returns the image stored for (tag, date), or a NotFound error.
func (c *Container) Get(tag string, date int64) (*pixel.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[key{tag, date}]
	if !ok {
		return nil, ferr.NewNotFound("no image for tag=%q date=%d", tag, date)
	}
	return img, nil
}

// Set stores img for (tag, date), replacing any prior entry.
func (c *Container) Set(tag string, date int64, img *pixel.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[key{tag, date}] = img
}

// Remove deletes every entry at date, across all tags.
func (c *Container) Remove(date int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.images {
		if k.date == date {
			delete(c.images, k)
		}
	}
}

// Dates returns the sorted list of dates stored under tag.
func (c *Container) Dates(tag string) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var dates []int64
	for k := range c.images {
		if k.tag == tag {
			dates = append(dates, k.date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates
}

// GetAny returns an arbitrary stored image, used by callers that only need a
// representative geometry/type (e.g. to size a default prediction area) and do not
// care which tag/date it came from. Iteration order over a Go map is unspecified,
// so which image is returned is unspecified too whenever more than one is stored.
func (c *Container) GetAny() (*pixel.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, img := range c.images {
		return img, true
	}
	return nil, false
}
