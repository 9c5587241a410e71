package discovery

import "sort"

// RankVideos sorts videos by view count, highest first, and truncates to limit.
// Ties keep their input order. A non-positive limit disables truncation.
// The input slice is not modified.
func RankVideos(videos []VideoRecord, limit int) []VideoRecord {
	out := make([]VideoRecord, len(videos))
	copy(out, videos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ViewCount > out[j].ViewCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
