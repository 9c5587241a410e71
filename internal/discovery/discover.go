package discovery

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	// SearchPageSize is the maximum page size of one search call.
	SearchPageSize = 50
	// MaxDiscoveredIDs caps the paginated strategy.
	MaxDiscoveredIDs = 150
	// MaxSearchCalls caps the number of search calls of either strategy.
	MaxSearchCalls = 3
)

// Fixed search parameters sent on every call.
const (
	searchType          = "video"
	searchOrder         = "viewCount"
	searchVideoDuration = "short"
)

// relevanceLanguages biases relevance for a region. It is a hint, not a filter.
var relevanceLanguages = map[string]string{
	"TW": "zh", "CN": "zh", "HK": "zh", "SG": "zh",
	"JP": "ja",
	"KR": "ko",
	"NO": "no",
	"CH": "de", "DE": "de",
	"DK": "da",
	"AE": "ar", "SA": "ar",
	"US": "en", "GB": "en", "CA": "en", "AU": "en", "IN": "en",
	"FR": "fr",
	"RU": "ru",
}

// RelevanceLanguage returns the language hint for a region code, or "" if none.
func RelevanceLanguage(region string) string {
	return relevanceLanguages[region]
}

// Upstream is the video search API the pipeline talks to.
type Upstream interface {
	// Search runs one search call and returns one page of video identifiers.
	Search(ctx context.Context, q SearchQuery) (SearchPage, error)
	// VideoDetails resolves at most DetailBatchSize identifiers. Unknown ids are omitted.
	VideoDetails(ctx context.Context, ids []string) ([]VideoItem, error)
	// VideoCategories returns the category id to title map for a region.
	VideoCategories(ctx context.Context, regionCode string) (map[string]string, error)
}

// Discovery is the outcome of one discovery run.
type Discovery struct {
	// IDs are unique, in first-seen order.
	IDs []string
	// Calls is the number of successful search calls.
	Calls int
}

// Discoverer turns a search request into a deduplicated list of video identifiers.
type Discoverer struct {
	upstream Upstream
	ledger   *QuotaLedger
	log      *slog.Logger
}

// NewDiscoverer returns a Discoverer charging every search call to ledger.
func NewDiscoverer(up Upstream, ledger *QuotaLedger, log *slog.Logger) *Discoverer {
	return &Discoverer{upstream: up, ledger: ledger, log: log}
}

// Discover runs the segmented strategy when segments are given and the
// paginated strategy otherwise. Any failed search call aborts with a *DiscoveryError.
func (d *Discoverer) Discover(ctx context.Context, req SearchRequest, segments []TimeSegment) (Discovery, error) {
	if len(segments) > 0 {
		return d.segmented(ctx, req, segments)
	}
	return d.paginated(ctx, req)
}

// SearchOnce issues a single search call without any time window or page token.
func (d *Discoverer) SearchOnce(ctx context.Context, req SearchRequest) (Discovery, error) {
	var (
		seen idSet
		out  Discovery
	)
	page, err := d.search(ctx, baseQuery(req), "relaxed search")
	if err != nil {
		return out, err
	}
	out.Calls = 1
	out.IDs = seen.appendNew(nil, page.VideoIDs, 0)
	return out, nil
}

func (d *Discoverer) segmented(ctx context.Context, req SearchRequest, segments []TimeSegment) (Discovery, error) {
	var (
		seen idSet
		out  Discovery
	)
	if len(segments) > MaxSearchCalls {
		segments = segments[:MaxSearchCalls]
	}
	for i, seg := range segments {
		q := baseQuery(req)
		q.PublishedAfter = seg.Start
		if !seg.Unbounded() {
			q.PublishedBefore = seg.End
		}

		stage := fmt.Sprintf("segment %d/%d", i+1, len(segments))
		page, err := d.search(ctx, q, stage)
		if err != nil {
			return out, err
		}
		out.Calls++

		before := len(out.IDs)
		out.IDs = seen.appendNew(out.IDs, page.VideoIDs, 0)
		d.log.Debug("segment searched",
			slog.String("segment", stage),
			slog.Int("returned", len(page.VideoIDs)),
			slog.Int("new", len(out.IDs)-before))
	}
	return out, nil
}

func (d *Discoverer) paginated(ctx context.Context, req SearchRequest) (Discovery, error) {
	var (
		seen idSet
		out  Discovery
	)
	q := baseQuery(req)
	for out.Calls < MaxSearchCalls {
		page, err := d.search(ctx, q, fmt.Sprintf("page %d", out.Calls+1))
		if err != nil {
			return out, err
		}
		out.Calls++
		out.IDs = seen.appendNew(out.IDs, page.VideoIDs, MaxDiscoveredIDs)

		d.log.Debug("page searched",
			slog.Int("page", out.Calls),
			slog.Int("ids", len(out.IDs)))

		if len(out.IDs) >= MaxDiscoveredIDs || page.NextPageToken == "" {
			break
		}
		q.PageToken = page.NextPageToken
	}
	return out, nil
}

// search runs one call and charges it to the ledger once it succeeds.
func (d *Discoverer) search(ctx context.Context, q SearchQuery, stage string) (SearchPage, error) {
	page, err := d.upstream.Search(ctx, q)
	if err != nil {
		return SearchPage{}, &DiscoveryError{Stage: stage, Err: err}
	}
	d.ledger.RecordCalls(1, 0, 0)
	return page, nil
}

// baseQuery builds the parameters shared by every call of one request.
func baseQuery(req SearchRequest) SearchQuery {
	q := SearchQuery{
		Keyword:       req.Keyword,
		Type:          searchType,
		Order:         searchOrder,
		VideoDuration: searchVideoDuration,
		MaxResults:    SearchPageSize,
	}
	if req.HasCategory() {
		q.CategoryID = req.CategoryFilter
	}
	if req.HasRegion() {
		q.RegionCode = req.RegionFilter
		q.RelevanceLanguage = RelevanceLanguage(req.RegionFilter)
	}
	return q
}

// idSet records identifiers already seen in one invocation.
type idSet map[string]struct{}

// appendNew appends the ids not yet seen to dst. A positive limit caps len(dst).
func (s *idSet) appendNew(dst, ids []string, limit int) []string {
	if *s == nil {
		*s = make(idSet)
	}
	for _, id := range ids {
		if limit > 0 && len(dst) >= limit {
			break
		}
		if id == "" {
			continue
		}
		if _, ok := (*s)[id]; ok {
			continue
		}
		(*s)[id] = struct{}{}
		dst = append(dst, id)
	}
	return dst
}
