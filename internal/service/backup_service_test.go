package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"playtrack/internal/development"
	"playtrack/internal/models"
	"playtrack/internal/repository"
)

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	if _, err := f.progress.SetAchievement(f.child.ID, models.CategoryLanguage, AchievementChange{
		PlayNumber: 2, Level: 5, Achieved: true, AchievedAt: at(2025, 1, 2),
	}); err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}

	var buf bytes.Buffer
	if err := NewBackupService(f.children, f.records).ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}

	children := repository.NewMemoryChildStore()
	records := repository.NewMemoryRecordStore()
	stats, err := NewBackupService(children, records).ImportFrom(&buf, false)
	if err != nil {
		t.Fatalf("ImportFrom() error = %v", err)
	}
	if stats.Children != 1 || stats.Records != 1 || stats.Rederived != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	child, _ := children.GetChildByID(f.child.ID)
	if child == nil || child.Name != "Ada" {
		t.Fatalf("child not restored: %+v", child)
	}
	record, _ := records.Get(f.child.ID, models.CategoryLanguage)
	if record == nil || record.CategoryDevelopmentalAge != 16 {
		t.Fatalf("record not restored: %+v", record)
	}
}

func TestImportRederivesDriftedRecords(t *testing.T) {
	f := newFixture(t)
	record, err := f.progress.SetAchievement(f.child.ID, models.CategoryLanguage, AchievementChange{
		PlayNumber: 1, Level: 3, Achieved: true, AchievedAt: at(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}
	drifted := record.Clone()
	drifted.GraphData = nil
	drifted.CategoryDevelopmentalAge = 2
	f.records.Put(f.child.ID, models.CategoryLanguage, drifted)

	var buf bytes.Buffer
	if err := NewBackupService(f.children, f.records).ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}

	stats, err := NewBackupService(f.children, f.records).ImportFrom(&buf, true)
	if err != nil {
		t.Fatalf("ImportFrom() error = %v", err)
	}
	if stats.Rederived != 1 {
		t.Errorf("Rederived = %d, want 1", stats.Rederived)
	}

	stored, _ := f.records.Get(f.child.ID, models.CategoryLanguage)
	report, err := development.Check(models.CategoryLanguage, *stored)
	if err != nil || !report.Consistent() {
		t.Errorf("imported record inconsistent: %+v, %v", report, err)
	}
}

func TestImportAbortsBeforeWriting(t *testing.T) {
	f := newFixture(t)
	if _, err := f.progress.SetAchievement(f.child.ID, models.CategoryLanguage, AchievementChange{
		PlayNumber: 1, Level: 1, Achieved: true, AchievedAt: at(2025, 1, 1),
	}); err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}

	var buf bytes.Buffer
	if err := NewBackupService(f.children, f.records).ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}
	// strip the date of the achieved level
	doc := strings.Replace(buf.String(), `"2025-01-01T00:00:00Z"`, "null", 1)

	children := repository.NewMemoryChildStore()
	records := repository.NewMemoryRecordStore()
	_, err := NewBackupService(children, records).ImportFrom(strings.NewReader(doc), false)
	if !errors.Is(err, development.ErrInvalidState) {
		t.Fatalf("ImportFrom() error = %v, want ErrInvalidState", err)
	}

	all, _ := children.GetAllChildren()
	keys, _ := records.List()
	if len(all) != 0 || len(keys) != 0 {
		t.Errorf("failed import wrote %d children and %d records", len(all), len(keys))
	}
}

func TestImportRejectsUndatedLowerLevel(t *testing.T) {
	f := newFixture(t)
	record, _ := f.catalog.NewRecord(models.CategoryLanguage)
	record.PlayData[0].AchievedLevelFlags[2] = true
	record.PlayData[0].AchievedDates[2] = at(2025, 1, 1)
	record.PlayData[0].AchievedLevelFlags[0] = true
	f.records.Put(f.child.ID, models.CategoryLanguage, record)

	var buf bytes.Buffer
	if err := NewBackupService(f.children, f.records).ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo() error = %v", err)
	}

	children := repository.NewMemoryChildStore()
	records := repository.NewMemoryRecordStore()
	_, err := NewBackupService(children, records).ImportFrom(&buf, false)
	var stateErr *development.InvalidStateError
	if !errors.As(err, &stateErr) || stateErr.Level != 1 {
		t.Fatalf("ImportFrom() error = %v, want invalid state at level 1", err)
	}
	if keys, _ := records.List(); len(keys) != 0 {
		t.Errorf("failed import wrote %d records", len(keys))
	}
}

func TestImportRejectsMalformedBackups(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not json",
			doc:  `{`,
		},
		{
			name: "wrong version",
			doc:  `{"version":"9.9","children":[],"records":[]}`,
		},
		{
			name: "record for unknown child",
			doc:  `{"version":"1.0","children":[],"records":[{"childId":"ghost","category":"language","record":{"playData":[],"graphData":[],"categoryDevelopmentalAge":0}}]}`,
		},
		{
			name: "unknown category",
			doc:  `{"version":"1.0","children":[{"id":"c1","name":"Ada","birthDate":"2024-01-15T00:00:00Z"}],"records":[{"childId":"c1","category":"astronomy","record":{"playData":[]}}]}`,
		},
		{
			name: "invalid child",
			doc:  `{"version":"1.0","children":[{"id":"c1","name":"A","birthDate":"2024-01-15T00:00:00Z"}],"records":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := repository.NewMemoryChildStore()
			records := repository.NewMemoryRecordStore()
			if _, err := NewBackupService(children, records).ImportFrom(strings.NewReader(tt.doc), false); err == nil {
				t.Error("expected an error")
			}
			all, _ := children.GetAllChildren()
			if len(all) != 0 {
				t.Errorf("failed import wrote %d children", len(all))
			}
		})
	}
}
