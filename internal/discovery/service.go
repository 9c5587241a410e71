package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryRegion is the region whose category names are used when the
// request does not filter by region.
const DefaultCategoryRegion = "TW"

// Service runs the search pipeline: plan segments, discover ids, fetch
// details, filter with relaxation, rank, and cache the result set.
type Service struct {
	discoverer     *Discoverer
	fetcher        *DetailFetcher
	ledger         *QuotaLedger
	results        ResultRepository
	log            *slog.Logger
	now            func() time.Time
	newID          func() string
	categoryRegion string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for segment planning and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCategoryRegion sets the fallback region of the category name lookup.
func WithCategoryRegion(region string) Option {
	return func(s *Service) {
		if region != "" {
			s.categoryRegion = region
		}
	}
}

// WithIDGenerator overrides how search ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService returns a Service using up for all upstream calls. The ledger and
// result repository are owned by the caller and may be shared.
func NewService(up Upstream, ledger *QuotaLedger, results ResultRepository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		ledger:         ledger,
		results:        results,
		log:            log,
		now:            time.Now,
		newID:          uuid.NewString,
		categoryRegion: DefaultCategoryRegion,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.discoverer = NewDiscoverer(up, ledger, log)
	s.fetcher = NewDetailFetcher(up, ledger, log)
	return s
}

// Search runs one search. Invalid requests return an error wrapping
// ErrInvalidRequest; a failed search call returns a *DiscoveryError. An empty
// result is not an error.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	req, err := req.Normalize()
	if err != nil {
		return SearchResult{}, err
	}

	searchID := s.newID()
	log := s.log.With(slog.String("search_id", searchID))
	log.Info("search started",
		slog.String("keyword", req.Keyword),
		slog.String("category", req.CategoryFilter),
		slog.String("region", req.RegionFilter),
		slog.Int("window_days", int(req.Window)),
		slog.Int64("min_views", req.MinViews),
		slog.Int("max_duration", req.MaxDuration),
		slog.Int("max_results", req.MaxResults))

	categories := s.fetcher.FetchCategories(ctx, s.categoryRegionFor(req))

	segments := PlanSegments(s.now(), req.Window)
	disc, err := s.discoverer.Discover(ctx, req, segments)
	if err != nil {
		log.Error("discovery failed", slog.String("error", err.Error()))
		return SearchResult{}, err
	}
	log.Info("ids discovered",
		slog.Int("segments", len(segments)),
		slog.Int("calls", disc.Calls),
		slog.Int("ids", len(disc.IDs)))

	batch := s.fetcher.FetchDetails(ctx, disc.IDs)
	failed := len(batch.Failures)
	sel := SelectVideos(batch.Items, req, categories)

	if len(sel.Videos) == 0 && req.filtersActive() {
		log.Info("no video matched, searching again without time window")
		again, err := s.discoverer.SearchOnce(ctx, req)
		if err != nil {
			log.Error("relaxed search failed", slog.String("error", err.Error()))
			return SearchResult{}, err
		}
		extra := s.fetcher.FetchDetails(ctx, again.IDs)
		failed += len(extra.Failures)
		sel = SelectWithoutViewFloor(extra.Items, req, categories)
	}

	s.results.SaveLast(LastResult{
		SearchID: searchID,
		Request:  req,
		Videos:   sel.Videos,
		StoredAt: s.now().UTC(),
	})

	videos := sel.Videos
	if videos == nil {
		videos = []VideoRecord{}
	}
	res := SearchResult{
		Success:       true,
		SearchID:      searchID,
		Videos:        videos,
		TotalResults:  len(videos),
		Quota:         s.ledger.Info(len(videos)),
		Relaxed:       sel.Relaxed,
		Message:       sel.Message,
		CanExport:     len(videos) > 0,
		FailedBatches: failed,
	}

	log.Info("search completed",
		slog.Int("videos", res.TotalResults),
		slog.Bool("relaxed", res.Relaxed),
		slog.Int("failed_batches", failed),
		slog.Int("quota_cost", res.Quota.CurrentCost))
	return res, nil
}

// QuotaInfo returns today's quota summary, counting the videos of the cached result.
func (s *Service) QuotaInfo() QuotaInfo {
	n := 0
	if last, ok := s.results.Last(); ok {
		n = len(last.Videos)
	}
	return s.ledger.Info(n)
}

// LastResult returns the cached result set for export. It returns
// ErrNothingToExport when nothing is cached or the cached set is empty.
func (s *Service) LastResult() (LastResult, error) {
	last, ok := s.results.Last()
	if !ok || len(last.Videos) == 0 {
		return LastResult{}, ErrNothingToExport
	}
	return last, nil
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) categoryRegionFor(req SearchRequest) string {
	if req.HasRegion() {
		return req.RegionFilter
	}
	return s.categoryRegion
}
