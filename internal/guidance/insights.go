package guidance

import (
	"sort"
	"time"
)

const journeyDateLayout = "2006-01-02"

// ComputeJourneyInsights aggregates a timeline into the overview record:
// entry count, current daily streak, the three most used tags, and the
// dominant mood of the most recent entries. Pure; entries are read only.
func ComputeJourneyInsights(entries []JourneyEntry) JourneyInsights {
	insights := JourneyInsights{EntryCount: len(entries)}
	if len(entries) == 0 {
		return insights
	}

	insights.StreakDays = streakDays(entries)
	insights.TopTags = topTags(entries, 3)
	insights.MoodTrend = dominantRecentMood(entries, 5)
	return insights
}

// streakDays counts consecutive calendar days with at least one entry,
// ending at the newest entry's day. Undated entries are ignored.
func streakDays(entries []JourneyEntry) int {
	days := make(map[string]bool, len(entries))
	var newest time.Time
	for _, e := range entries {
		d, err := time.Parse(journeyDateLayout, e.Date)
		if err != nil {
			continue
		}
		days[e.Date] = true
		if d.After(newest) {
			newest = d
		}
	}
	if len(days) == 0 {
		return 0
	}
	streak := 0
	for day := newest; days[day.Format(journeyDateLayout)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// topTags returns the n most frequent tags, ties broken alphabetically.
func topTags(entries []JourneyEntry, n int) []string {
	counts := make(map[string]int)
	for _, e := range entries {
		for _, tag := range e.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// dominantRecentMood returns the most frequent mood among the last n moody
// entries, ties broken by recency.
func dominantRecentMood(entries []JourneyEntry, n int) string {
	var recent []string
	for i := len(entries) - 1; i >= 0 && len(recent) < n; i-- {
		if entries[i].Mood != "" {
			recent = append(recent, entries[i].Mood)
		}
	}
	if len(recent) == 0 {
		return ""
	}
	counts := make(map[string]int, len(recent))
	best := recent[0]
	for _, m := range recent {
		counts[m]++
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best
}
