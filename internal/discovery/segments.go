package discovery

import "time"

// segmentCount is the number of sub-windows a window of three or more days is split into.
const segmentCount = 3

// PlanSegments splits the recency window ending at now into disjoint time segments,
// newest first. WindowAll yields no segments. Windows of one or two days yield a
// single unbounded segment; longer windows yield three equal segments whose union
// is [now-window, now).
func PlanSegments(now time.Time, window Window) []TimeSegment {
	if window <= WindowAll {
		return nil
	}
	now = now.UTC().Truncate(time.Second)
	total := time.Duration(window) * 24 * time.Hour

	if window <= 2 {
		return []TimeSegment{{Start: now.Add(-total)}}
	}

	span := total / segmentCount
	segments := make([]TimeSegment, 0, segmentCount)
	for i := 0; i < segmentCount; i++ {
		seg := TimeSegment{Start: now.Add(-time.Duration(i+1) * span)}
		if i > 0 {
			seg.End = now.Add(-time.Duration(i) * span)
		}
		segments = append(segments, seg)
	}
	return segments
}
