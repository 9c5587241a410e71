package discovery

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultKeyword is searched when the request carries no keyword.
	DefaultKeyword = "shorts"
	// DefaultMaxResults is the result count used when none is requested.
	DefaultMaxResults = 25
	// DefaultMinViews is the inbound default view-count floor.
	DefaultMinViews = 500000
	// AllFilter disables the category or region filter.
	AllFilter = "all"
)

// Window is a recency window in days. WindowAll disables the time filter.
type Window int

// WindowAll means "any upload time".
const WindowAll Window = 0

// NoDurationLimit disables the maximum duration filter.
const NoDurationLimit = 0

// allowedWindows are the recency windows the front end offers.
var allowedWindows = map[Window]bool{WindowAll: true, 1: true, 3: true, 5: true, 7: true}

// SearchRequest is the immutable input of one search invocation.
type SearchRequest struct {
	Keyword        string `json:"keyword"`
	CategoryFilter string `json:"category_filter"`
	RegionFilter   string `json:"region_filter"`
	Window         Window `json:"time_filter"`
	MinViews       int64  `json:"min_views"`
	// MaxDuration is in seconds; NoDurationLimit means "all".
	MaxDuration int `json:"max_duration"`
	MaxResults  int `json:"max_results"`
}

// Normalize applies defaults and validates the request. Errors wrap ErrInvalidRequest.
func (r SearchRequest) Normalize() (SearchRequest, error) {
	r.Keyword = strings.TrimSpace(r.Keyword)
	if r.Keyword == "" {
		r.Keyword = DefaultKeyword
	}
	r.CategoryFilter = normalizeFilter(r.CategoryFilter)
	r.RegionFilter = strings.ToUpper(normalizeFilter(r.RegionFilter))
	if r.RegionFilter == "ALL" {
		r.RegionFilter = AllFilter
	}
	if r.MaxResults == 0 {
		r.MaxResults = DefaultMaxResults
	}

	switch {
	case r.MaxResults < 0:
		return r, fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidRequest, r.MaxResults)
	case r.MinViews < 0:
		return r, fmt.Errorf("%w: minViews must not be negative, got %d", ErrInvalidRequest, r.MinViews)
	case r.MaxDuration < 0:
		return r, fmt.Errorf("%w: maxDuration must not be negative, got %d", ErrInvalidRequest, r.MaxDuration)
	case !allowedWindows[r.Window]:
		return r, fmt.Errorf("%w: timeFilter must be one of 1, 3, 5, 7 or all, got %d", ErrInvalidRequest, r.Window)
	}
	return r, nil
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, AllFilter) {
		return AllFilter
	}
	return v
}

// HasCategory reports whether a category filter is set.
func (r SearchRequest) HasCategory() bool { return r.CategoryFilter != "" && r.CategoryFilter != AllFilter }

// HasRegion reports whether a region filter is set.
func (r SearchRequest) HasRegion() bool { return r.RegionFilter != "" && r.RegionFilter != AllFilter }

// HasDurationLimit reports whether a maximum duration is set.
func (r SearchRequest) HasDurationLimit() bool { return r.MaxDuration != NoDurationLimit }

// HasWindow reports whether a recency window is set.
func (r SearchRequest) HasWindow() bool { return r.Window != WindowAll }

// filtersActive reports whether any filter could have excluded every result.
func (r SearchRequest) filtersActive() bool {
	return r.MinViews > 0 || r.HasDurationLimit() || r.HasWindow()
}

// TimeSegment is the half-open interval [Start, End) in UTC. A zero End is unbounded ("now").
type TimeSegment struct {
	Start time.Time
	End   time.Time
}

// Unbounded reports whether the segment extends to now.
func (s TimeSegment) Unbounded() bool { return s.End.IsZero() }

// SearchQuery is one upstream search call.
type SearchQuery struct {
	Keyword           string
	Type              string
	Order             string
	VideoDuration     string
	MaxResults        int64
	CategoryID        string
	RegionCode        string
	RelevanceLanguage string
	PublishedAfter    time.Time
	PublishedBefore   time.Time
	PageToken         string
}

// SearchPage is the identifier page returned by one search call.
type SearchPage struct {
	VideoIDs      []string
	NextPageToken string
}

// Thumbnails holds thumbnail URLs by size; absent sizes are empty.
type Thumbnails struct {
	Default  string `json:"default,omitempty"`
	Medium   string `json:"medium,omitempty"`
	High     string `json:"high,omitempty"`
	Standard string `json:"standard,omitempty"`
	Maxres   string `json:"maxres,omitempty"`
}

// VideoItem is a video detail item as returned by the upstream adapter.
// Missing upstream fields are zero: counts 0, duration "" (0 seconds), no tags.
type VideoItem struct {
	ID                   string
	Title                string
	Description          string
	ChannelID            string
	ChannelTitle         string
	PublishedAt          string
	CategoryID           string
	DefaultLanguage      string
	DefaultAudioLanguage string
	Tags                 []string
	ViewCount            int64
	LikeCount            int64
	CommentCount         int64
	Duration             string
	Definition           string
	Caption              string
	LicensedContent      bool
	Projection           string
	Thumbnails           Thumbnails
}

// VideoRecord is the enriched, ranked video handed to callers.
type VideoRecord struct {
	VideoID              string     `json:"videoId"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ChannelID            string     `json:"channelId"`
	ChannelTitle         string     `json:"channelTitle"`
	PublishedAt          string     `json:"publishedAt"`
	CategoryID           string     `json:"categoryId"`
	CategoryName         string     `json:"categoryName"`
	DefaultLanguage      string     `json:"defaultLanguage"`
	DefaultAudioLanguage string     `json:"defaultAudioLanguage"`
	Tags                 []string   `json:"tags"`
	ViewCount            int64      `json:"viewCount"`
	LikeCount            int64      `json:"likeCount"`
	CommentCount         int64      `json:"commentCount"`
	Duration             string     `json:"duration"`
	DurationSeconds      int        `json:"durationSeconds"`
	Definition           string     `json:"definition"`
	Caption              string     `json:"caption"`
	LicensedContent      bool       `json:"licensedContent"`
	Projection           string     `json:"projection"`
	Thumbnails           Thumbnails `json:"thumbnails"`
	URL                  string     `json:"url"`
	FormattedViewCount   string     `json:"formattedViewCount"`
	FormattedDuration    string     `json:"formattedDuration"`
}

// SearchResult is the outbound result of a successful search.
type SearchResult struct {
	Success      bool          `json:"success"`
	SearchID     string        `json:"search_id"`
	Videos       []VideoRecord `json:"videos"`
	TotalResults int           `json:"totalResults"`
	Quota        QuotaInfo     `json:"quota_info"`
	Relaxed      bool          `json:"relaxed"`
	Message      string        `json:"message,omitempty"`
	CanExport    bool          `json:"can_export"`

	// FailedBatches counts detail batches dropped during the search.
	FailedBatches int `json:"-"`
}
