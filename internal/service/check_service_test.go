package service

import (
	"testing"

	"playtrack/internal/models"
	"playtrack/internal/repository"
)

type recordedRuns struct {
	runs []repository.ConsistencyRun
}

func (r *recordedRuns) RecordConsistencyRun(run repository.ConsistencyRun) error {
	r.runs = append(r.runs, run)
	return nil
}

// seedDrift stores one consistent record and one drifted record, plus one
// record in an invalid state
func seedDrift(t *testing.T, f *fixture) (other *models.Child) {
	t.Helper()

	if _, err := f.progress.SetAchievement(f.child.ID, models.CategoryLanguage, AchievementChange{
		PlayNumber: 1, Level: 3, Achieved: true, AchievedAt: at(2025, 1, 1),
	}); err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}

	record, err := f.progress.SetAchievement(f.child.ID, models.CategoryCognitive, AchievementChange{
		PlayNumber: 1, Level: 2, Achieved: true, AchievedAt: at(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("SetAchievement() error = %v", err)
	}
	drifted := record.Clone()
	drifted.CategoryDevelopmentalAge = 4
	f.records.Put(f.child.ID, models.CategoryCognitive, drifted)

	other, _ = f.children.CreateChild("Ben", f.child.BirthDate, "")
	corrupt, _ := f.catalog.NewRecord(models.CategoryLanguage)
	corrupt.PlayData[0].AchievedLevelFlags[4] = true
	f.records.Put(other.ID, models.CategoryLanguage, corrupt)
	return other
}

func TestCheckServiceReportsWithoutRepair(t *testing.T) {
	f := newFixture(t)
	seedDrift(t, f)
	runs := &recordedRuns{}
	s := NewCheckService(f.records, f.progress, runs)

	summary, err := s.Run("", false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Checked != 3 || summary.Drifted != 1 || summary.Repaired != 0 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.Unresolved() != 2 {
		t.Errorf("Unresolved() = %d, want 2", summary.Unresolved())
	}

	stored, _ := f.records.Get(f.child.ID, models.CategoryCognitive)
	if stored.CategoryDevelopmentalAge != 4 {
		t.Error("check without repair modified the record")
	}

	if len(runs.runs) != 1 || runs.runs[0].DriftCount != 1 {
		t.Errorf("recorded runs = %+v", runs.runs)
	}
}

func TestCheckServiceRepairs(t *testing.T) {
	f := newFixture(t)
	seedDrift(t, f)
	s := NewCheckService(f.records, f.progress, nil)

	summary, err := s.Run(f.child.ID, true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Checked != 2 || summary.Drifted != 1 || summary.Repaired != 1 || summary.Unresolved() != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	stored, _ := f.records.Get(f.child.ID, models.CategoryCognitive)
	if stored.CategoryDevelopmentalAge != 6 {
		t.Errorf("CategoryDevelopmentalAge = %v, want 6", stored.CategoryDevelopmentalAge)
	}

	summary, err = s.Run(f.child.ID, false)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Drifted != 0 {
		t.Errorf("drift remains after repair: %+v", summary)
	}
}
