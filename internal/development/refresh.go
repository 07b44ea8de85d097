package development

import (
	"errors"

	"playtrack/internal/models"
)

// Derived holds the values recomputed from a record's play data
type Derived struct {
	GraphData        []models.GraphPoint
	DevelopmentalAge float64
}

// Derive reduces play data once and builds both the timeline and the
// developmental age from that single reduced set.
func Derive(playData []models.Activity) (Derived, error) {
	achievements, err := ReduceAll(playData)
	if err != nil {
		return Derived{}, err
	}
	return Derived{
		GraphData:        BuildTimeline(achievements),
		DevelopmentalAge: DevelopmentalAge(achievements),
	}, nil
}

// Refresh returns a copy of record with graph data and developmental age
// regenerated from its play data. The input record is never modified, so a
// failed refresh leaves the caller's state intact.
func Refresh(record *models.CategoryRecord) (*models.CategoryRecord, error) {
	if record == nil {
		return nil, errors.New("refresh: nil category record")
	}
	derived, err := Derive(record.PlayData)
	if err != nil {
		return nil, err
	}

	updated := record.Clone()
	updated.GraphData = derived.GraphData
	updated.CategoryDevelopmentalAge = derived.DevelopmentalAge
	return updated, nil
}
