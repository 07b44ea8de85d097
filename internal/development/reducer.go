// Package development derives developmental ages and timeline series from
// per-activity achievement checklists.
package development

import (
	"fmt"
	"math"
	"time"

	"playtrack/internal/models"
)

// Achievement is the single highest-level summary of one activity
type Achievement struct {
	PlayNumber   int
	HighestLevel int
	AchievedAt   time.Time
	AchieveMonth float64
}

// Round2 rounds to two decimal places, halves away from zero
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ValidateActivity checks the structural shape of an activity and that
// every achieved level, and only those, carries a date
func ValidateActivity(a models.Activity) error {
	if a.PlayNumber <= 0 {
		return fmt.Errorf("%w: play number %d must be positive", ErrInvalidActivity, a.PlayNumber)
	}
	if len(a.AchievedLevelFlags) != models.LevelCount {
		return fmt.Errorf("%w: play %d has %d level flags, want %d", ErrInvalidActivity, a.PlayNumber, len(a.AchievedLevelFlags), models.LevelCount)
	}
	if len(a.AchievedDates) != models.LevelCount {
		return fmt.Errorf("%w: play %d has %d level dates, want %d", ErrInvalidActivity, a.PlayNumber, len(a.AchievedDates), models.LevelCount)
	}
	if a.MinAge > a.MaxAge {
		return fmt.Errorf("%w: play %d has minAge %.2f above maxAge %.2f", ErrInvalidActivity, a.PlayNumber, a.MinAge, a.MaxAge)
	}
	// A date is present exactly when its level is achieved.
	for i, achieved := range a.AchievedLevelFlags {
		switch {
		case achieved && a.AchievedDates[i] == nil:
			return &InvalidStateError{PlayNumber: a.PlayNumber, Level: i + 1}
		case !achieved && a.AchievedDates[i] != nil:
			return fmt.Errorf("%w: play %d level %d has a date but is not achieved", ErrInvalidActivity, a.PlayNumber, i+1)
		}
	}
	return nil
}

// HighestLevel returns the highest achieved level (1..5), or 0 if none is achieved
func HighestLevel(a models.Activity) int {
	for i := len(a.AchievedLevelFlags) - 1; i >= 0; i-- {
		if a.AchievedLevelFlags[i] {
			return i + 1
		}
	}
	return 0
}

// AchieveMonth places a level inside the activity's age window.
// The window is split into four equal steps between levels 1 and 5.
func AchieveMonth(minAge, maxAge float64, level int) float64 {
	delta := (maxAge - minAge) / 4
	return Round2(minAge + delta*float64(level-1))
}

// Reduce collapses one activity's checklist. The boolean is false when no
// level is achieved and the activity contributes nothing.
func Reduce(a models.Activity) (Achievement, bool, error) {
	if err := ValidateActivity(a); err != nil {
		return Achievement{}, false, err
	}

	level := HighestLevel(a)
	if level == 0 {
		return Achievement{}, false, nil
	}

	// The date belongs to the highest level, not to the latest timestamp.
	return Achievement{
		PlayNumber:   a.PlayNumber,
		HighestLevel: level,
		AchievedAt:   *a.AchievedDates[level-1],
		AchieveMonth: AchieveMonth(a.MinAge, a.MaxAge, level),
	}, true, nil
}

// ReduceAll reduces every activity in catalog order, skipping those with no
// achieved level. The first invalid activity aborts the whole reduction.
func ReduceAll(activities []models.Activity) ([]Achievement, error) {
	achievements := make([]Achievement, 0, len(activities))
	seen := make(map[int]bool, len(activities))
	for _, a := range activities {
		if seen[a.PlayNumber] {
			return nil, fmt.Errorf("%w: duplicate play number %d", ErrInvalidActivity, a.PlayNumber)
		}
		seen[a.PlayNumber] = true

		achievement, ok, err := Reduce(a)
		if err != nil {
			return nil, err
		}
		if ok {
			achievements = append(achievements, achievement)
		}
	}
	return achievements, nil
}
