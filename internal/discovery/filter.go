package discovery

import "fmt"

// Messages attached to results produced by relaxation.
const (
	relaxedDurationMessage = "Duration limit relaxed, found %d videos"
	relaxedSearchMessage   = "Search conditions relaxed to show more results"
)

// FilterCriteria parameterizes one filter pass. A zero MaxDuration disables the duration check.
type FilterCriteria struct {
	MinViews    int64
	MaxDuration int
}

// FilterVideos turns detail items into records, keeping only those that pass c.
// Items whose id was already seen in this pass are dropped. Upstream order is kept.
func FilterVideos(items []VideoItem, c FilterCriteria, categories map[string]string) []VideoRecord {
	seen := make(map[string]struct{}, len(items))
	out := make([]VideoRecord, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		if item.ViewCount < c.MinViews {
			continue
		}
		secs := DurationSeconds(item.Duration)
		if c.MaxDuration != NoDurationLimit && secs > c.MaxDuration {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, newVideoRecord(item, secs, categories))
	}
	return out
}

// Selection is the ranked outcome of the filter and relaxation engine.
type Selection struct {
	Videos  []VideoRecord
	Relaxed bool
	Message string
}

// SelectVideos runs the strict pass and, when it yields fewer than half of
// maxResults, a second pass without the duration limit. Strict results always
// come first in the merged list.
func SelectVideos(items []VideoItem, req SearchRequest, categories map[string]string) Selection {
	strict := RankVideos(FilterVideos(items, FilterCriteria{
		MinViews:    req.MinViews,
		MaxDuration: req.MaxDuration,
	}, categories), req.MaxResults)

	if len(strict) >= req.MaxResults/2 {
		return Selection{Videos: strict}
	}

	relaxed := RankVideos(FilterVideos(items, FilterCriteria{MinViews: req.MinViews}, categories), req.MaxResults)
	merged := MergeVideos(strict, relaxed, req.MaxResults)
	if len(merged) == len(strict) {
		return Selection{Videos: strict}
	}
	return Selection{
		Videos:  merged,
		Relaxed: true,
		Message: fmt.Sprintf(relaxedDurationMessage, len(merged)),
	}
}

// SelectWithoutViewFloor applies only the duration limit. It is used when a
// search returned nothing and the time window was dropped.
func SelectWithoutViewFloor(items []VideoItem, req SearchRequest, categories map[string]string) Selection {
	videos := RankVideos(FilterVideos(items, FilterCriteria{MaxDuration: req.MaxDuration}, categories), req.MaxResults)
	if len(videos) == 0 {
		return Selection{Videos: videos}
	}
	return Selection{Videos: videos, Relaxed: true, Message: relaxedSearchMessage}
}

// MergeVideos appends the videos of extra not already in primary, then truncates to limit.
func MergeVideos(primary, extra []VideoRecord, limit int) []VideoRecord {
	seen := make(map[string]struct{}, len(primary))
	out := make([]VideoRecord, 0, len(primary)+len(extra))
	for _, v := range primary {
		seen[v.VideoID] = struct{}{}
		out = append(out, v)
	}
	for _, v := range extra {
		if _, ok := seen[v.VideoID]; ok {
			continue
		}
		seen[v.VideoID] = struct{}{}
		out = append(out, v)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CategoryName resolves a category id, falling back to "Unknown category (<id>)".
func CategoryName(id string, categories map[string]string) string {
	if name, ok := categories[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown category (%s)", id)
}

func newVideoRecord(item VideoItem, secs int, categories map[string]string) VideoRecord {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return VideoRecord{
		VideoID:              item.ID,
		Title:                item.Title,
		Description:          item.Description,
		ChannelID:            item.ChannelID,
		ChannelTitle:         item.ChannelTitle,
		PublishedAt:          item.PublishedAt,
		CategoryID:           item.CategoryID,
		CategoryName:         CategoryName(item.CategoryID, categories),
		DefaultLanguage:      item.DefaultLanguage,
		DefaultAudioLanguage: item.DefaultAudioLanguage,
		Tags:                 tags,
		ViewCount:            item.ViewCount,
		LikeCount:            item.LikeCount,
		CommentCount:         item.CommentCount,
		Duration:             item.Duration,
		DurationSeconds:      secs,
		Definition:           item.Definition,
		Caption:              item.Caption,
		LicensedContent:      item.LicensedContent,
		Projection:           item.Projection,
		Thumbnails:           item.Thumbnails,
		URL:                  WatchURL(item.ID),
		FormattedViewCount:   FormatViewCount(item.ViewCount),
		FormattedDuration:    FormatDuration(item.Duration),
	}
}
