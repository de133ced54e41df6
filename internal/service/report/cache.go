package report

import (
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

type extractKey struct {
	FileID      string
	Sheet       string
	KeyColumn   string
	ValueColumn string
	Transform   Transform
	Skip        int
}

// Cache memoizes extraction results per uploaded workbook. Entries are keyed
// by the full extraction arguments including the workbook's file ID, so a
// re-upload (which mints a new ID) can never be served stale mappings.
// Recomputation is always safe; the cache is purely a performance layer.
type Cache struct {
	mu      sync.RWMutex
	entries map[extractKey]model.MetricMap
}

// NewCache creates an empty extraction cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[extractKey]model.MetricMap),
	}
}

// Extract returns the memoized mapping for the given arguments, computing and
// storing it on first use. Failed extractions are not cached.
func (c *Cache) Extract(fileID string, wb *excelize.File, sheet, keyColumn, valueColumn string, transform Transform, skip int) (model.MetricMap, error) {
	key := extractKey{
		FileID:      fileID,
		Sheet:       sheet,
		KeyColumn:   keyColumn,
		ValueColumn: valueColumn,
		Transform:   transform,
		Skip:        skip,
	}

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err := Extract(wb, sheet, keyColumn, valueColumn, transform, skip)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()

	return result, nil
}

// Invalidate drops every entry belonging to one workbook
func (c *Cache) Invalidate(fileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.FileID == fileID {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached mappings
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
