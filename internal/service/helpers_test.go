package service

import (
	"testing"
	"time"

	"playtrack/internal/catalog"
	"playtrack/internal/models"
	"playtrack/internal/repository"
)

const testCatalog = `{
	"version": 1,
	"categories": [
		{
			"category": "language",
			"title": "Language",
			"plays": [
				{"playNumber": 1, "playTitle": "Babbles", "minAge": 0, "maxAge": 12},
				{"playNumber": 2, "playTitle": "First words", "minAge": 8, "maxAge": 16},
				{"playNumber": 3, "playTitle": "Two-word phrases", "minAge": 16, "maxAge": 24},
				{"playNumber": 4, "playTitle": "Short sentences", "minAge": 20, "maxAge": 32}
			]
		},
		{
			"category": "cognitive",
			"title": "Cognitive",
			"plays": [
				{"playNumber": 1, "playTitle": "Object permanence", "minAge": 6, "maxAge": 6}
			]
		}
	]
}`

type fixture struct {
	children *repository.MemoryChildStore
	records  *repository.MemoryRecordStore
	catalog  *catalog.Catalog
	progress *ProgressService
	child    *models.Child
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("catalog.Parse() error = %v", err)
	}

	f := &fixture{
		children: repository.NewMemoryChildStore(),
		records:  repository.NewMemoryRecordStore(),
		catalog:  cat,
		now:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	f.progress = NewProgressService(f.children, f.records, cat)
	f.progress.now = func() time.Time { return f.now }

	f.child, err = f.children.CreateChild("Ada", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "parent@example.com")
	if err != nil {
		t.Fatalf("CreateChild() error = %v", err)
	}
	return f
}

func at(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
