package tracking

import (
	"sort"

	"github.com/abhisek/goalpath/internal/calendar"
	"github.com/abhisek/goalpath/internal/model"
)

// CurrentStreak returns the number of consecutive periods, ending with the
// period containing today, in which the step was checked in. A period
// without a check-in today breaks the streak even if earlier periods are
// covered. One-off steps have no streak.
func CurrentStreak(step model.Step, today calendar.Date) int {
	if !step.Frequency.Recurring() {
		return 0
	}
	buckets := bucketSet(step)

	streak := 0
	cursor := today
	for buckets[calendar.BucketKey(cursor, step.Frequency)] {
		streak++
		cursor = calendar.PreviousAnchor(cursor, step.Frequency)
	}
	return streak
}

// LongestStreak returns the longest run of consecutive periods with at
// least one check-in anywhere in the step's history.
func LongestStreak(step model.Step) int {
	if !step.Frequency.Recurring() {
		return 0
	}
	buckets := bucketSet(step)

	dates := checkInDates(step)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	best := 0
	counted := make(map[string]bool, len(buckets))
	// Walk back from each period's latest check-in; a period already counted
	// as part of a later run cannot start a longer one.
	for i := len(dates) - 1; i >= 0; i-- {
		key := calendar.BucketKey(dates[i], step.Frequency)
		if counted[key] {
			continue
		}
		run := 0
		cursor := dates[i]
		for {
			k := calendar.BucketKey(cursor, step.Frequency)
			if !buckets[k] {
				break
			}
			counted[k] = true
			run++
			cursor = calendar.PreviousAnchor(cursor, step.Frequency)
		}
		if run > best {
			best = run
		}
	}
	return best
}

// bucketSet maps every parseable check-in to its period key. Check-ins are
// stored as raw dates; bucketing happens only here, at read time, so a
// changed frequency reinterprets the old history.
func bucketSet(step model.Step) map[string]bool {
	set := make(map[string]bool, len(step.CheckIns))
	for _, d := range checkInDates(step) {
		set[calendar.BucketKey(d, step.Frequency)] = true
	}
	return set
}

func checkInDates(step model.Step) []calendar.Date {
	out := make([]calendar.Date, 0, len(step.CheckIns))
	for _, s := range step.CheckIns {
		d, err := calendar.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
