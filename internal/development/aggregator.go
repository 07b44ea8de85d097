package development

import (
	"cmp"
	"slices"
)

// TopN is how many of the most advanced achievements feed the developmental age
const TopN = 3

// topByMonth returns up to n items ordered by month descending, ties broken
// by ascending play number. The input slice is not modified.
func topByMonth[T any](items []T, n int, month func(T) float64, play func(T) int) []T {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b T) int {
		if c := cmp.Compare(month(b), month(a)); c != 0 {
			return c
		}
		return cmp.Compare(play(a), play(b))
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func averageMonths[T any](items []T, month func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += month(item)
	}
	return Round2(sum / float64(len(items)))
}

func achievementMonth(a Achievement) float64 { return a.AchieveMonth }
func achievementPlay(a Achievement) int       { return a.PlayNumber }

// TopAchievements returns the achievements that feed the developmental age
func TopAchievements(achievements []Achievement) []Achievement {
	achieved := make([]Achievement, 0, len(achievements))
	for _, a := range achievements {
		if a.HighestLevel > 0 {
			achieved = append(achieved, a)
		}
	}
	return topByMonth(achieved, TopN, achievementMonth, achievementPlay)
}

// DevelopmentalAge averages the TopN highest achieve months, or returns 0
// when nothing has been achieved yet.
func DevelopmentalAge(achievements []Achievement) float64 {
	return averageMonths(TopAchievements(achievements), achievementMonth)
}
