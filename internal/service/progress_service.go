package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"playtrack/internal/catalog"
	"playtrack/internal/development"
	"playtrack/internal/logging"
	"playtrack/internal/models"
	"playtrack/internal/repository"
	"playtrack/internal/utils"
)

// ChildLookup finds a child by ID, returning nil, nil when absent
type ChildLookup interface {
	GetChildByID(childID string) (*models.Child, error)
}

// CategoryAge is one axis of the radar chart
type CategoryAge struct {
	Category         models.Category `json:"category"`
	Title            string          `json:"title"`
	DevelopmentalAge float64         `json:"developmentalAge"`
}

// Radar compares every category's developmental age with the child's biological age
type Radar struct {
	ChildID       string        `json:"childId"`
	BiologicalAge float64       `json:"biologicalAgeMonths"`
	Categories    []CategoryAge `json:"categories"`
}

// AchievementChange describes one level toggle
type AchievementChange struct {
	PlayNumber int
	Level      int
	Achieved   bool
	// AchievedAt defaults to now when nil; ignored when clearing
	AchievedAt *time.Time
}

// ProgressService records achievements and serves the derived views
type ProgressService struct {
	children ChildLookup
	records  repository.RecordStore
	catalog  *catalog.Catalog
	locks    *recordLocks
	now      func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(children ChildLookup, records repository.RecordStore, cat *catalog.Catalog) *ProgressService {
	return &ProgressService{
		children: children,
		records:  records,
		catalog:  cat,
		locks:    newRecordLocks(),
		now:      time.Now,
	}
}

func (s *ProgressService) requireChild(childID string) (*models.Child, error) {
	child, err := s.children.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

func (s *ProgressService) requireCategory(category models.Category) error {
	if _, ok := s.catalog.Entry(category); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

// load returns the stored record, or a fresh one built from the catalog
// when nothing has been stored yet. The fresh record is not persisted.
func (s *ProgressService) load(childID string, category models.Category) (*models.CategoryRecord, error) {
	record, err := s.records.Get(childID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s record: %w", category, err)
	}
	if record != nil {
		return record, nil
	}
	record, ok := s.catalog.NewRecord(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return record, nil
}

// Record returns a child's record for one category
func (s *ProgressService) Record(childID string, category models.Category) (*models.CategoryRecord, error) {
	if err := s.requireCategory(category); err != nil {
		return nil, err
	}
	if _, err := s.requireChild(childID); err != nil {
		return nil, err
	}
	return s.load(childID, category)
}

// maxWriteAttempts bounds how often a read-modify-write is retried after
// another writer changed the record in between
const maxWriteAttempts = 5

// update applies fn to the current record of one child and category and
// writes the result only if nobody else wrote the record since it was read,
// retrying otherwise. fn receives a copy of the stored record, or nil when
// none is stored, and must not keep it. Writers in this process are
// serialized by the record locks; writers in other processes are caught by
// the store's version check.
func (s *ProgressService) update(childID string, category models.Category, fn func(current *models.CategoryRecord) (*models.CategoryRecord, error)) (*models.CategoryRecord, error) {
	key := repository.RecordKey{ChildID: childID, Category: category}
	unlock := s.locks.lock(key)
	defer unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, version, err := s.records.GetVersioned(childID, category)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s record: %w", category, err)
		}

		updated, err := fn(current)
		if err != nil {
			return nil, err
		}

		ok, err := s.records.CompareAndPut(childID, category, updated, version)
		if err != nil {
			return nil, err
		}
		if ok {
			return updated, nil
		}

		logging.Log.WithFields(logrus.Fields{
			"child":    childID,
			"category": category,
			"attempt":  attempt,
		}).Debug("Record changed concurrently, retrying")
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrWriteConflict, childID, category)
}

// SetAchievement sets or clears one level of one activity, regenerates the
// derived fields and writes the whole record. Concurrent calls for the same
// child and category are applied one after another. On error nothing is
// written.
func (s *ProgressService) SetAchievement(childID string, category models.Category, change AchievementChange) (*models.CategoryRecord, error) {
	if change.Level < 1 || change.Level > models.LevelCount {
		return nil, ErrInvalidLevel
	}
	if err := s.requireCategory(category); err != nil {
		return nil, err
	}
	if _, err := s.requireChild(childID); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if change.AchievedAt != nil {
		at = change.AchievedAt.UTC()
	}

	updated, err := s.update(childID, category, func(record *models.CategoryRecord) (*models.CategoryRecord, error) {
		if record == nil {
			record, _ = s.catalog.NewRecord(category)
		}
		i := record.FindActivity(change.PlayNumber)
		if i < 0 {
			return nil, fmt.Errorf("%w: play %d in %s", ErrPlayNotFound, change.PlayNumber, category)
		}

		activity := &record.PlayData[i]
		if len(activity.AchievedLevelFlags) != models.LevelCount || len(activity.AchievedDates) != models.LevelCount {
			return nil, fmt.Errorf("%w: play %d does not track %d levels", development.ErrInvalidActivity, change.PlayNumber, models.LevelCount)
		}
		idx := change.Level - 1
		activity.AchievedLevelFlags[idx] = change.Achieved
		if change.Achieved {
			date := at
			activity.AchievedDates[idx] = &date
		} else {
			activity.AchievedDates[idx] = nil
		}

		updated, err := development.Refresh(record)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh %s record: %w", category, err)
		}
		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Log.WithFields(logrus.Fields{
		"child":            childID,
		"category":         category,
		"play":             change.PlayNumber,
		"level":            change.Level,
		"achieved":         change.Achieved,
		"developmentalAge": updated.CategoryDevelopmentalAge,
	}).Debug("Achievement updated")

	return updated, nil
}

// Timeline returns the stored graph points of one category. Every write
// derives them from the play data, so nothing is recomputed here.
func (s *ProgressService) Timeline(childID string, category models.Category) ([]models.GraphPoint, error) {
	record, err := s.Record(childID, category)
	if err != nil {
		return nil, err
	}
	if record.GraphData == nil {
		return []models.GraphPoint{}, nil
	}
	return record.GraphData, nil
}

// Radar returns every catalog category's developmental age next to the
// child's biological age
func (s *ProgressService) Radar(childID string) (*Radar, error) {
	child, err := s.requireChild(childID)
	if err != nil {
		return nil, err
	}

	radar := &Radar{
		ChildID:       childID,
		BiologicalAge: utils.AgeInMonths(child.BirthDate, s.now()),
		Categories:    make([]CategoryAge, 0, len(s.catalog.Categories())),
	}
	for _, category := range s.catalog.Categories() {
		entry, _ := s.catalog.Entry(category)
		record, err := s.load(childID, category)
		if err != nil {
			return nil, err
		}
		radar.Categories = append(radar.Categories, CategoryAge{
			Category:         category,
			Title:            entry.Title,
			DevelopmentalAge: record.CategoryDevelopmentalAge,
		})
	}
	return radar, nil
}

// Recompute re-derives a stored record from its play data and writes it back.
// A write that lands after the read is kept and re-derived in turn.
func (s *ProgressService) Recompute(childID string, category models.Category) (*models.CategoryRecord, error) {
	return s.update(childID, category, func(record *models.CategoryRecord) (*models.CategoryRecord, error) {
		if record == nil {
			return nil, ErrRecordNotFound
		}
		updated, err := development.Refresh(record)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh %s record: %w", category, err)
		}
		return updated, nil
	})
}

// Check runs the consistency checker against one stored record
func (s *ProgressService) Check(childID string, category models.Category) (development.Report, error) {
	record, err := s.records.Get(childID, category)
	if err != nil {
		return development.Report{}, fmt.Errorf("failed to load %s record: %w", category, err)
	}
	if record == nil {
		return development.Report{}, ErrRecordNotFound
	}
	return development.Check(category, *record)
}
