// Package catalog holds the activity definitions new category records are built from.
package catalog

import (
	_ "embed"
	"fmt"

	json "github.com/goccy/go-json"

	"playtrack/internal/models"
)

//go:embed catalog.json
var defaultCatalog []byte

// Play is one activity definition
type Play struct {
	PlayNumber int     `json:"playNumber"`
	PlayTitle  string  `json:"playTitle"`
	MinAge     float64 `json:"minAge"`
	MaxAge     float64 `json:"maxAge"`
}

// Entry groups the plays of one category
type Entry struct {
	Category models.Category `json:"category"`
	Title    string          `json:"title"`
	Plays    []Play          `json:"plays"`
}

type catalogFile struct {
	Version    int     `json:"version"`
	Categories []Entry `json:"categories"`
}

// Catalog is an immutable, validated set of category entries
type Catalog struct {
	entries    []Entry
	byCategory map[models.Category]int
}

// Default returns the catalog shipped with the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := &Catalog{byCategory: make(map[models.Category]int, len(file.Categories))}
	for _, entry := range file.Categories {
		if !entry.Category.IsValid() {
			return nil, fmt.Errorf("catalog: unknown category %q", entry.Category)
		}
		if _, dup := c.byCategory[entry.Category]; dup {
			return nil, fmt.Errorf("catalog: category %q listed twice", entry.Category)
		}

		seen := make(map[int]bool, len(entry.Plays))
		for _, play := range entry.Plays {
			if play.PlayNumber <= 0 {
				return nil, fmt.Errorf("catalog: %s play number %d must be positive", entry.Category, play.PlayNumber)
			}
			if seen[play.PlayNumber] {
				return nil, fmt.Errorf("catalog: %s play number %d listed twice", entry.Category, play.PlayNumber)
			}
			if play.MinAge > play.MaxAge {
				return nil, fmt.Errorf("catalog: %s play %d has minAge above maxAge", entry.Category, play.PlayNumber)
			}
			seen[play.PlayNumber] = true
		}

		c.byCategory[entry.Category] = len(c.entries)
		c.entries = append(c.entries, entry)
	}

	return c, nil
}

// Categories returns the catalog's categories in catalog order
func (c *Catalog) Categories() []models.Category {
	categories := make([]models.Category, len(c.entries))
	for i, entry := range c.entries {
		categories[i] = entry.Category
	}
	return categories
}

// Entry returns the definition of one category
func (c *Catalog) Entry(category models.Category) (Entry, bool) {
	i, ok := c.byCategory[category]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// NewRecord builds an empty category record with one activity per play
func (c *Catalog) NewRecord(category models.Category) (*models.CategoryRecord, bool) {
	entry, ok := c.Entry(category)
	if !ok {
		return nil, false
	}

	record := &models.CategoryRecord{
		PlayData:  make([]models.Activity, 0, len(entry.Plays)),
		GraphData: []models.GraphPoint{},
	}
	for _, play := range entry.Plays {
		record.PlayData = append(record.PlayData, models.NewActivity(play.PlayNumber, play.PlayTitle, play.MinAge, play.MaxAge))
	}
	return record, true
}
