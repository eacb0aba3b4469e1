package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/smartbill/internal/model"
)

// ClockLayout is the clock format used in entry time ranges.
const ClockLayout = "3:04 PM"

func mergedRun(e model.TimeEntry) bool {
	return e.Merge != nil && e.Merge.Count > 1
}

// DisplayText is the list label for an entry. A merged run reads
// "<title> (<n> entries merged)", with ", billable" added inside the
// parentheses when a client is assigned.
func DisplayText(e model.TimeEntry) string {
	if !mergedRun(e) {
		return e.WindowTitle
	}
	qualifier := ""
	if e.HasClient() {
		qualifier = ", billable"
	}
	return fmt.Sprintf("%s (%d entries merged%s)", e.WindowTitle, e.Merge.Count, qualifier)
}

// TimeRangeText renders when an entry happened, in loc. Merged runs show
// "start - end" unless both ends fall on the same minute. Plain entries
// show their own time, or the raw timestamp when it cannot be parsed.
func TimeRangeText(e model.TimeEntry, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	if mergedRun(e) && !e.Merge.Start.IsZero() && !e.Merge.End.IsZero() {
		start := e.Merge.Start.In(loc).Format(ClockLayout)
		end := e.Merge.End.In(loc).Format(ClockLayout)
		if start == end {
			return start
		}
		return start + " - " + end
	}
	ts, err := ParseTimestamp(e.Timestamp, loc)
	if err != nil {
		return e.Timestamp
	}
	return ts.In(loc).Format(ClockLayout)
}

// MergeConsecutive collapses chronologically adjacent entries that share a
// window title, a client and a calendar day (in loc) into one entry per
// run. The merged entry keeps the first entry's id, timestamp and metadata,
// sums the durations, and ends where the last interval ends. Runs of one
// come back unchanged. The result is in chronological order and the input
// slice is left untouched.
func MergeConsecutive(entries []model.TimeEntry, loc *time.Location) ([]model.TimeEntry, error) {
	if loc == nil {
		loc = time.Local
	}

	type timed struct {
		entry model.TimeEntry
		at    time.Time
	}
	items := make([]timed, 0, len(entries))
	for _, e := range entries {
		at, err := entryTime(e.ID, e.Timestamp, loc)
		if err != nil {
			return nil, err
		}
		items = append(items, timed{entry: e, at: at.In(loc)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.Before(items[j].at)
	})

	out := make([]model.TimeEntry, 0, len(items))
	for i := 0; i < len(items); {
		j := i + 1
		for j < len(items) &&
			items[j].entry.WindowTitle == items[i].entry.WindowTitle &&
			items[j].entry.ClientID == items[i].entry.ClientID &&
			sameDay(items[j].at, items[i].at) {
			j++
		}

		if j-i == 1 {
			out = append(out, items[i].entry)
			i = j
			continue
		}

		merged := items[i].entry
		merged.Duration = 0
		info := &model.MergeInfo{
			Count: j - i,
			IDs:   make([]string, 0, j-i),
			Start: items[i].at,
		}
		for _, it := range items[i:j] {
			merged.Duration += it.entry.Duration
			info.IDs = append(info.IDs, it.entry.ID)
		}
		last := items[j-1]
		info.End = last.at.Add(time.Duration(last.entry.Duration) * time.Second)
		merged.Merge = info

		out = append(out, merged)
		i = j
	}
	return out, nil
}
