package development

import (
	"slices"

	"playtrack/internal/models"
)

// BuildTimeline orders achievements by achievement date, keeping catalog
// order for equal dates. The result is never nil.
func BuildTimeline(achievements []Achievement) []models.GraphPoint {
	points := make([]models.GraphPoint, 0, len(achievements))
	for _, a := range achievements {
		if a.HighestLevel == 0 {
			continue
		}
		points = append(points, models.GraphPoint{
			AchieveDate:          a.AchievedAt,
			PlayNumber:           a.PlayNumber,
			AchievedLevelHighest: a.HighestLevel,
			AchievedMonth:        a.AchieveMonth,
		})
	}

	slices.SortStableFunc(points, func(a, b models.GraphPoint) int {
		return a.AchieveDate.Compare(b.AchieveDate)
	})
	return points
}
