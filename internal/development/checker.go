package development

import (
	"math"

	"playtrack/internal/models"
)

// MonthEpsilon is the tolerance, in months, below which two values agree
const MonthEpsilon = 0.01

// MismatchKind classifies a disagreement between play data and graph data
type MismatchKind string

const (
	// MonthMismatch: both sides know the play but disagree on its month
	MonthMismatch MismatchKind = "month_mismatch"
	// MissingInGraph: an achieved play has no graph entry
	MissingInGraph MismatchKind = "missing_in_graph"
	// UnexpectedInGraph: a graph entry has no achieved play, or repeats one
	UnexpectedInGraph MismatchKind = "unexpected_in_graph"
)

// Mismatch is one per-activity finding
type Mismatch struct {
	Category   models.Category `json:"category"`
	PlayNumber int             `json:"playNumber"`
	Kind       MismatchKind    `json:"kind"`
	Stored     float64         `json:"stored"`
	Recomputed float64         `json:"recomputed"`
	Delta      float64         `json:"delta"`
}

// Report is the result of checking one category record
type Report struct {
	Category     models.Category `json:"category"`
	StoredAge    float64         `json:"storedAge"`
	PlayDataAge  float64         `json:"playDataAge"`
	GraphDataAge float64         `json:"graphDataAge"`

	PlayDataMatchesStored  bool `json:"playDataMatchesStored"`
	GraphDataMatchesStored bool `json:"graphDataMatchesStored"`
	DerivedAgree           bool `json:"derivedAgree"`

	Mismatches []Mismatch `json:"mismatches"`
}

// Consistent reports whether the record is fully derivable from its play data
func (r Report) Consistent() bool {
	return r.PlayDataMatchesStored && r.GraphDataMatchesStored && r.DerivedAgree && len(r.Mismatches) == 0
}

func sameMonth(a, b float64) bool {
	return math.Abs(a-b) <= MonthEpsilon+1e-9
}

func graphMonth(p models.GraphPoint) float64 { return p.AchievedMonth }
func graphPlay(p models.GraphPoint) int       { return p.PlayNumber }

// GraphDataAge averages the TopN stored graph entries the same way the
// aggregator ranks achievements.
func GraphDataAge(graph []models.GraphPoint) float64 {
	return averageMonths(topByMonth(graph, TopN, graphMonth, graphPlay), graphMonth)
}

// Check recomputes the developmental age from play data and from stored graph
// data and compares both with the persisted age. Only an invalid play data
// state is returned as an error; drift is reported in the Report.
func Check(category models.Category, record models.CategoryRecord) (Report, error) {
	achievements, err := ReduceAll(record.PlayData)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Category:     category,
		StoredAge:    record.CategoryDevelopmentalAge,
		PlayDataAge:  DevelopmentalAge(achievements),
		GraphDataAge: GraphDataAge(record.GraphData),
		Mismatches:   []Mismatch{},
	}
	report.PlayDataMatchesStored = sameMonth(report.PlayDataAge, report.StoredAge)
	report.GraphDataMatchesStored = sameMonth(report.GraphDataAge, report.StoredAge)
	report.DerivedAgree = sameMonth(report.PlayDataAge, report.GraphDataAge)

	recomputed := make(map[int]Achievement, len(achievements))
	for _, a := range achievements {
		recomputed[a.PlayNumber] = a
	}

	matched := make(map[int]bool, len(record.GraphData))
	for _, point := range record.GraphData {
		a, ok := recomputed[point.PlayNumber]
		if !ok || matched[point.PlayNumber] {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Category:   category,
				PlayNumber: point.PlayNumber,
				Kind:       UnexpectedInGraph,
				Stored:     point.AchievedMonth,
				Delta:      Round2(point.AchievedMonth),
			})
			continue
		}
		matched[point.PlayNumber] = true

		if !sameMonth(a.AchieveMonth, point.AchievedMonth) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Category:   category,
				PlayNumber: point.PlayNumber,
				Kind:       MonthMismatch,
				Stored:     point.AchievedMonth,
				Recomputed: a.AchieveMonth,
				Delta:      Round2(point.AchievedMonth - a.AchieveMonth),
			})
		}
	}

	for _, a := range achievements {
		if matched[a.PlayNumber] {
			continue
		}
		report.Mismatches = append(report.Mismatches, Mismatch{
			Category:   category,
			PlayNumber: a.PlayNumber,
			Kind:       MissingInGraph,
			Recomputed: a.AchieveMonth,
			Delta:      Round2(-a.AchieveMonth),
		})
	}

	return report, nil
}
