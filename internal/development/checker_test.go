package development

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"playtrack/internal/models"
)

// randomRecord builds a record whose play data keeps a date on every achieved level
func randomRecord(rng *rand.Rand, plays int) *models.CategoryRecord {
	start := date(2024, 1, 1)
	record := &models.CategoryRecord{}
	for p := 1; p <= plays; p++ {
		minAge := float64(rng.Intn(48))
		maxAge := minAge + float64(rng.Intn(13))
		levels := map[int]time.Time{}
		for level := 1; level <= models.LevelCount; level++ {
			if rng.Intn(3) == 0 {
				levels[level] = start.AddDate(0, 0, rng.Intn(400))
			}
		}
		record.PlayData = append(record.PlayData, activity(p, minAge, maxAge, levels))
	}
	return record
}

func TestScenarioLevelThreeOfTwelveMonthWindow(t *testing.T) {
	record := &models.CategoryRecord{PlayData: []models.Activity{
		activity(1, 0, 12, map[int]time.Time{3: date(2025, 1, 1)}),
	}}

	updated, err := Refresh(record)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if updated.CategoryDevelopmentalAge != 6 {
		t.Errorf("developmental age = %v, want 6", updated.CategoryDevelopmentalAge)
	}
	if len(updated.GraphData) != 1 || updated.GraphData[0].AchievedMonth != 6 || updated.GraphData[0].AchievedLevelHighest != 3 {
		t.Errorf("unexpected graph data: %+v", updated.GraphData)
	}
}

func TestScenarioTopThreeOfFour(t *testing.T) {
	at := date(2025, 1, 1)
	// level 3 of 0..12 -> 6, level 3 of 0..16 -> 8, level 5 of 6..10 -> 10, level 1 of 4..8 -> 4
	record := &models.CategoryRecord{PlayData: []models.Activity{
		activity(1, 0, 12, map[int]time.Time{3: at}),
		activity(2, 0, 16, map[int]time.Time{3: at}),
		activity(3, 6, 10, map[int]time.Time{5: at}),
		activity(4, 4, 8, map[int]time.Time{1: at}),
	}}

	updated, err := Refresh(record)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if updated.CategoryDevelopmentalAge != 8 {
		t.Errorf("developmental age = %v, want 8", updated.CategoryDevelopmentalAge)
	}
	if len(updated.GraphData) != 4 {
		t.Errorf("expected all four achievements on the timeline, got %d", len(updated.GraphData))
	}
}

func TestRefreshEmptyRecord(t *testing.T) {
	record := &models.CategoryRecord{PlayData: []models.Activity{
		activity(1, 0, 12, nil),
		activity(2, 3, 9, nil),
	}}

	updated, err := Refresh(record)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if updated.CategoryDevelopmentalAge != 0 {
		t.Errorf("developmental age = %v, want 0", updated.CategoryDevelopmentalAge)
	}
	if updated.GraphData == nil || len(updated.GraphData) != 0 {
		t.Errorf("expected empty graph data, got %+v", updated.GraphData)
	}
}

func TestRefreshLeavesInputUntouched(t *testing.T) {
	record := &models.CategoryRecord{
		PlayData: []models.Activity{activity(1, 0, 12, map[int]time.Time{2: date(2025, 1, 1)})},
		GraphData: []models.GraphPoint{
			{PlayNumber: 1, AchievedLevelHighest: 1, AchievedMonth: 0},
		},
		CategoryDevelopmentalAge: 42,
	}

	if _, err := Refresh(record); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if record.CategoryDevelopmentalAge != 42 || record.GraphData[0].AchievedMonth != 0 {
		t.Error("Refresh must not modify its input")
	}
}

func TestRefreshInvalidStateFails(t *testing.T) {
	broken := activity(3, 0, 12, nil)
	broken.AchievedLevelFlags[2] = true

	record := &models.CategoryRecord{PlayData: []models.Activity{
		activity(1, 0, 12, map[int]time.Time{1: date(2025, 1, 1)}),
		broken,
	}}

	updated, err := Refresh(record)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if updated != nil {
		t.Error("expected no record on failure")
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		record := randomRecord(rng, 1+rng.Intn(20))

		first, err := Derive(record.PlayData)
		if err != nil {
			t.Fatalf("Derive() error = %v", err)
		}
		second, err := Derive(record.PlayData)
		if err != nil {
			t.Fatalf("Derive() error = %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("iteration %d: Derive is not idempotent", i)
		}
	}
}

func TestRefreshedRecordsAreConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		record := randomRecord(rng, rng.Intn(25))

		updated, err := Refresh(record)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}

		report, err := Check(models.CategoryGrossMotor, *updated)
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if !report.Consistent() {
			t.Fatalf("iteration %d: refreshed record reported inconsistent: %+v", i, report)
		}
		if report.PlayDataAge != updated.CategoryDevelopmentalAge || report.GraphDataAge != updated.CategoryDevelopmentalAge {
			t.Fatalf("iteration %d: derived ages %v/%v differ from stored %v", i, report.PlayDataAge, report.GraphDataAge, updated.CategoryDevelopmentalAge)
		}
	}
}

func TestDevelopmentalAgeIsMeanOfInputMonths(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		record := randomRecord(rng, 1+rng.Intn(15))
		achievements, err := ReduceAll(record.PlayData)
		if err != nil {
			t.Fatalf("ReduceAll() error = %v", err)
		}
		if len(achievements) == 0 {
			continue
		}

		top := TopAchievements(achievements)
		var sum float64
		lowest, highest := top[0].AchieveMonth, top[0].AchieveMonth
		for _, a := range top {
			sum += a.AchieveMonth
			if a.AchieveMonth < lowest {
				lowest = a.AchieveMonth
			}
			if a.AchieveMonth > highest {
				highest = a.AchieveMonth
			}
		}

		got := DevelopmentalAge(achievements)
		if got != Round2(sum/float64(len(top))) {
			t.Fatalf("iteration %d: age %v is not the mean of the selected months", i, got)
		}
		if got < lowest-MonthEpsilon || got > highest+MonthEpsilon {
			t.Fatalf("iteration %d: age %v outside selected range [%v, %v]", i, got, lowest, highest)
		}
		for _, a := range achievements {
			selected := false
			for _, s := range top {
				if s.PlayNumber == a.PlayNumber {
					selected = true
				}
			}
			if !selected && a.AchieveMonth > top[len(top)-1].AchieveMonth {
				t.Fatalf("iteration %d: play %d (%v) outranks a selected achievement", i, a.PlayNumber, a.AchieveMonth)
			}
		}
	}
}

func TestCheckFlagsStaleGraphEntry(t *testing.T) {
	at := date(2025, 1, 1)
	record := &models.CategoryRecord{PlayData: []models.Activity{
		activity(1, 0, 12, map[int]time.Time{3: at}),
		activity(2, 0, 16, map[int]time.Time{3: at.AddDate(0, 1, 0)}),
		activity(3, 6, 10, map[int]time.Time{5: at.AddDate(0, 2, 0)}),
		activity(4, 4, 8, map[int]time.Time{1: at.AddDate(0, 3, 0)}),
	}}
	updated, err := Refresh(record)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	// simulate a level edit that never reached the graph
	for i := range updated.GraphData {
		if updated.GraphData[i].PlayNumber == 2 {
			updated.GraphData[i].AchievedMonth = 4
		}
	}

	report, err := Check(models.CategoryLanguage, *updated)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if report.Consistent() {
		t.Fatal("expected drift to be reported")
	}
	if len(report.Mismatches) != 1 {
		t.Fatalf("expected exactly one mismatch, got %+v", report.Mismatches)
	}

	m := report.Mismatches[0]
	if m.PlayNumber != 2 || m.Kind != MonthMismatch {
		t.Errorf("unexpected mismatch: %+v", m)
	}
	if m.Category != models.CategoryLanguage || m.Stored != 4 || m.Recomputed != 8 || m.Delta != -4 {
		t.Errorf("unexpected mismatch values: %+v", m)
	}
	if !report.PlayDataMatchesStored {
		t.Error("play data still matches the stored age")
	}
	// graph top three is now 10, 6, 4 -> 6.67
	if report.GraphDataAge != 6.67 || report.GraphDataMatchesStored || report.DerivedAgree {
		t.Errorf("unexpected graph data age comparison: %+v", report)
	}
}

func TestCheckMissingAndUnexpectedEntries(t *testing.T) {
	at := date(2025, 1, 1)
	record := models.CategoryRecord{
		PlayData: []models.Activity{
			activity(1, 0, 12, map[int]time.Time{3: at}),
			activity(2, 0, 12, map[int]time.Time{1: at}),
			activity(3, 0, 12, nil),
		},
		GraphData: []models.GraphPoint{
			{AchieveDate: at, PlayNumber: 1, AchievedLevelHighest: 3, AchievedMonth: 6},
			{AchieveDate: at, PlayNumber: 3, AchievedLevelHighest: 2, AchievedMonth: 3},
			{AchieveDate: at, PlayNumber: 1, AchievedLevelHighest: 3, AchievedMonth: 6},
		},
		CategoryDevelopmentalAge: 3,
	}

	report, err := Check(models.CategoryCognitive, record)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	kinds := map[MismatchKind][]int{}
	for _, m := range report.Mismatches {
		kinds[m.Kind] = append(kinds[m.Kind], m.PlayNumber)
	}
	if !reflect.DeepEqual(kinds[UnexpectedInGraph], []int{3, 1}) {
		t.Errorf("unexpected_in_graph = %v, want [3 1]", kinds[UnexpectedInGraph])
	}
	if !reflect.DeepEqual(kinds[MissingInGraph], []int{2}) {
		t.Errorf("missing_in_graph = %v, want [2]", kinds[MissingInGraph])
	}
	if len(kinds[MonthMismatch]) != 0 {
		t.Errorf("expected no month mismatches, got %v", kinds[MonthMismatch])
	}
	if report.PlayDataAge != 3 || !report.PlayDataMatchesStored {
		t.Errorf("play data age = %v, want 3 matching stored", report.PlayDataAge)
	}
}

func TestCheckToleratesSubEpsilonDifferences(t *testing.T) {
	at := date(2025, 1, 1)
	record := models.CategoryRecord{
		PlayData: []models.Activity{activity(1, 0, 12, map[int]time.Time{3: at})},
		GraphData: []models.GraphPoint{
			{AchieveDate: at, PlayNumber: 1, AchievedLevelHighest: 3, AchievedMonth: 6.01},
		},
		CategoryDevelopmentalAge: 5.99,
	}

	report, err := Check(models.CategorySocial, record)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(report.Mismatches) != 0 {
		t.Errorf("expected no mismatches, got %+v", report.Mismatches)
	}
	if !report.PlayDataMatchesStored {
		t.Error("6.00 and 5.99 are within tolerance")
	}
	if report.GraphDataMatchesStored {
		t.Error("6.01 and 5.99 differ by more than the tolerance")
	}
}

func TestCheckInvalidStateIsAnError(t *testing.T) {
	broken := activity(1, 0, 12, nil)
	broken.AchievedLevelFlags[0] = true

	_, err := Check(models.CategorySelfCare, models.CategoryRecord{PlayData: []models.Activity{broken}})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
