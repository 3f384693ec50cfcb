package selection

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
)

// Item is a user-chosen file awaiting submission
type Item struct {
	Name string
	Data []byte
}

// Buffer holds the files chosen for the next submission. Setting a new
// selection replaces the previous one and drops any previews built for it.
type Buffer struct {
	items    []Item
	previews *cache.Cache
	mu       sync.RWMutex
}

func New() *Buffer {
	return &Buffer{
		previews: cache.New(cache.NoExpiration, 0),
	}
}

// Set replaces the buffer contents. A nil or empty slice empties the buffer.
func (b *Buffer) Set(items []Item) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make([]Item, len(items))
	copy(b.items, items)
	b.previews.Flush()
}

func (b *Buffer) Clear() {
	b.Set(nil)
}

// Items returns the current selection in order
func (b *Buffer) Items() []Item {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := make([]Item, len(b.items))
	copy(items, b.items)
	return items
}

func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Names returns the display names of the selected files
func (b *Buffer) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, len(b.items))
	for i, item := range b.items {
		names[i] = item.Name
	}
	return names
}

// Preview returns a data URI for the item at index i, building it on first use.
func (b *Buffer) Preview(i int) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i < 0 || i >= len(b.items) {
		return "", false
	}

	key := strconv.Itoa(i)
	if uri, ok := b.previews.Get(key); ok {
		return uri.(string), true
	}

	item := b.items[i]
	uri := "data:" + http.DetectContentType(item.Data) + ";base64," + base64.StdEncoding.EncodeToString(item.Data)
	b.previews.Set(key, uri, cache.NoExpiration)
	return uri, true
}

// LoadFiles reads image files from disk. Files that do not sniff as images
// are rejected.
func LoadFiles(paths []string) ([]Item, error) {
	items := make([]Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if !IsImage(data) {
			return nil, fmt.Errorf("%s is not an image (%s)", path, http.DetectContentType(data))
		}

		items = append(items, Item{
			Name: filepath.Base(path),
			Data: data,
		})
	}
	return items, nil
}

// IsImage reports whether data sniffs as an image/* content type
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}
