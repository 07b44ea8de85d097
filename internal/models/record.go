package models

import "time"

// LevelCount is the number of achievement levels every activity tracks
const LevelCount = 5

// Category identifies a developmental domain
type Category string

const (
	CategoryGrossMotor Category = "gross_motor"
	CategoryFineMotor  Category = "fine_motor"
	CategoryLanguage   Category = "language"
	CategoryCognitive  Category = "cognitive"
	CategorySocial     Category = "social"
	CategorySelfCare   Category = "self_care"
)

// AllCategories lists the known categories in display order
var AllCategories = []Category{
	CategoryGrossMotor,
	CategoryFineMotor,
	CategoryLanguage,
	CategoryCognitive,
	CategorySocial,
	CategorySelfCare,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Activity is one developmental "play" inside a category.
// AchievedDates[i] is set only while AchievedLevelFlags[i] is true.
type Activity struct {
	PlayNumber         int          `json:"playNumber"`
	PlayTitle          string       `json:"playTitle"`
	MinAge             float64      `json:"minAge"`
	MaxAge             float64      `json:"maxAge"`
	AchievedLevelFlags []bool       `json:"achievedLevelFlags"`
	AchievedDates      []*time.Time `json:"achievedDates"`
}

// NewActivity creates an activity with no level achieved
func NewActivity(playNumber int, title string, minAge, maxAge float64) Activity {
	return Activity{
		PlayNumber:         playNumber,
		PlayTitle:          title,
		MinAge:             minAge,
		MaxAge:             maxAge,
		AchievedLevelFlags: make([]bool, LevelCount),
		AchievedDates:      make([]*time.Time, LevelCount),
	}
}

// Clone returns a deep copy of the activity
func (a Activity) Clone() Activity {
	out := a
	if a.AchievedLevelFlags != nil {
		out.AchievedLevelFlags = append([]bool(nil), a.AchievedLevelFlags...)
	}
	if a.AchievedDates != nil {
		out.AchievedDates = make([]*time.Time, len(a.AchievedDates))
		for i, d := range a.AchievedDates {
			if d != nil {
				t := *d
				out.AchievedDates[i] = &t
			}
		}
	}
	return out
}

// GraphPoint is one entry of the timeline series
type GraphPoint struct {
	AchieveDate          time.Time `json:"achieveDate"`
	PlayNumber           int       `json:"playNumber"`
	AchievedLevelHighest int       `json:"achievedLevel_Highest"`
	AchievedMonth        float64   `json:"achievedMonth"`
}

// CategoryRecord is the persisted state of one category for one child
type CategoryRecord struct {
	PlayData                 []Activity   `json:"playData"`
	GraphData                []GraphPoint `json:"graphData"`
	CategoryDevelopmentalAge float64      `json:"categoryDevelopmentalAge"`
}

// Clone returns a deep copy of the record
func (r *CategoryRecord) Clone() *CategoryRecord {
	if r == nil {
		return nil
	}
	out := &CategoryRecord{
		PlayData:                 make([]Activity, len(r.PlayData)),
		GraphData:                make([]GraphPoint, len(r.GraphData)),
		CategoryDevelopmentalAge: r.CategoryDevelopmentalAge,
	}
	for i, a := range r.PlayData {
		out.PlayData[i] = a.Clone()
	}
	copy(out.GraphData, r.GraphData)
	return out
}

// FindActivity returns the index of the activity with the given play number, or -1
func (r *CategoryRecord) FindActivity(playNumber int) int {
	for i, a := range r.PlayData {
		if a.PlayNumber == playNumber {
			return i
		}
	}
	return -1
}
