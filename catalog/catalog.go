// catalog/catalog.go
package catalog

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Gustavo2020/GestUnifServ/models"
	"github.com/Gustavo2020/GestUnifServ/utils"
)

// RiskCatalog is the in-memory index of the official municipality risk
// catalog. Lookups key on the normalized municipality name (trimmed,
// lower-cased, diacritics stripped), so "Bogotá", "BOGOTA" and "Bogotá "
// all resolve to the same entry. On duplicate keys the last-loaded row wins.
//
// The catalog is read-only between loads and safe for concurrent readers;
// Reload swaps the whole index under the write lock.
type RiskCatalog struct {
	mu         sync.RWMutex
	entries    map[string]models.RiskEntry
	ordered    []models.RiskEntry // load order, duplicates removed
	sourcePath string
}

// NewRiskCatalog loads the catalog from the CSV at path.
func NewRiskCatalog(path string) (*RiskCatalog, error) {
	c := &RiskCatalog{sourcePath: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the backing CSV and atomically replaces the index.
func (c *RiskCatalog) Reload() error {
	file, err := os.Open(c.sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open risk catalog %s: %w", c.sourcePath, err)
	}
	defer file.Close()

	parsed, err := ParseRiskCsv(file)
	if err != nil {
		return fmt.Errorf("failed to parse risk catalog %s: %w", c.sourcePath, err)
	}

	entries := make(map[string]models.RiskEntry, len(parsed))
	ordered := make([]models.RiskEntry, 0, len(parsed))
	for _, e := range parsed {
		key := utils.NormalizeKey(e.Municipio)
		if _, dup := entries[key]; dup {
			log.Printf("WARN Catalog: duplicate municipality %q, last-loaded entry wins", e.Municipio)
			// Drop the earlier occurrence from the ordered list.
			for i := range ordered {
				if utils.NormalizeKey(ordered[i].Municipio) == key {
					ordered = append(ordered[:i], ordered[i+1:]...)
					break
				}
			}
		}
		entries[key] = e
		ordered = append(ordered, e)
	}

	c.mu.Lock()
	c.entries = entries
	c.ordered = ordered
	c.mu.Unlock()

	log.Printf("Catalog: loaded %d municipalities from %s\n", len(entries), c.sourcePath)
	return nil
}

// Lookup resolves a municipality name against the catalog. The boolean is
// false when no entry exists for the normalized name.
func (c *RiskCatalog) Lookup(name string) (models.RiskEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[utils.NormalizeKey(name)]
	return entry, ok
}

// Size returns the number of distinct municipalities loaded.
func (c *RiskCatalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// SuggestFilters narrows Suggest results. Empty fields match everything.
type SuggestFilters struct {
	Departamento string
	Pais         string
}

// Suggest returns catalog entries whose municipality matches the query
// case- and accent-insensitively. Prefix matches rank before substring
// matches; within a rank entries sort alphabetically by municipality then
// department. The result is truncated to limit and an empty slice (never
// nil access, never an error) when nothing matches.
func (c *RiskCatalog) Suggest(query string, filters SuggestFilters, limit int) []models.RiskEntry {
	if limit <= 0 {
		limit = 10
	}
	q := utils.NormalizeKey(query)
	dep := utils.NormalizeKey(filters.Departamento)
	pais := utils.NormalizeKey(filters.Pais)

	c.mu.RLock()
	defer c.mu.RUnlock()

	type match struct {
		entry  models.RiskEntry
		prefix bool
	}
	var matches []match
	for _, e := range c.ordered {
		if dep != "" && utils.NormalizeKey(e.Departamento) != dep {
			continue
		}
		if pais != "" && utils.NormalizeKey(e.Pais) != pais {
			continue
		}
		key := utils.NormalizeKey(e.Municipio)
		if q == "" {
			matches = append(matches, match{entry: e})
			continue
		}
		if strings.HasPrefix(key, q) {
			matches = append(matches, match{entry: e, prefix: true})
		} else if strings.Contains(key, q) {
			matches = append(matches, match{entry: e})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		mi := utils.NormalizeKey(matches[i].entry.Municipio)
		mj := utils.NormalizeKey(matches[j].entry.Municipio)
		if mi != mj {
			return mi < mj
		}
		return utils.NormalizeKey(matches[i].entry.Departamento) < utils.NormalizeKey(matches[j].entry.Departamento)
	})

	results := make([]models.RiskEntry, 0, limit)
	for _, m := range matches {
		if len(results) == limit {
			break
		}
		results = append(results, m.entry)
	}
	return results
}
