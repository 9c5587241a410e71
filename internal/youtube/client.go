// Package youtube adapts the YouTube Data API v3 to the discovery pipeline.
// Upstream responses are converted once, here, into discovery types.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shorts-discovery/internal/discovery"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 30 * time.Second

	apiKeyEnv         = "YOUTUBE_API_KEY"
	apiKeyPrefix      = "AIzaSy"
	apiKeyLength      = 39
	apiKeyPlaceholder = "your_youtube_api_key_here"
)

var (
	searchParts   = []string{"id"}
	videoParts    = []string{"snippet", "statistics", "contentDetails"}
	categoryParts = []string{"snippet"}
)

// Config holds the adapter settings.
type Config struct {
	APIKey string
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRPS paces calls client side. Zero disables pacing.
	MaxRPS float64
}

// Client implements discovery.Upstream on top of the YouTube Data API v3.
type Client struct {
	service *ytapi.Service
	timeout time.Duration
	limiter *rate.Limiter
}

var _ discovery.Upstream = (*Client)(nil)

// ValidateAPIKey checks the key format before any call is made.
// It returns a *discovery.ConfigError naming the failed precondition.
func ValidateAPIKey(key string) error {
	switch {
	case key == "" || key == apiKeyPlaceholder:
		return &discovery.ConfigError{Setting: apiKeyEnv, Reason: "not set"}
	case !strings.HasPrefix(key, apiKeyPrefix):
		return &discovery.ConfigError{Setting: apiKeyEnv, Reason: "must start with " + apiKeyPrefix}
	case len(key) != apiKeyLength:
		return &discovery.ConfigError{Setting: apiKeyEnv, Reason: fmt.Sprintf("must be %d characters, got %d", apiKeyLength, len(key))}
	}
	return nil
}

// MaskKey returns the key with all but its first and last four characters hidden.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// NewClient validates cfg and builds the API service. Extra options are
// appended after the API key option, so tests can point the client at a
// local endpoint.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if err := ValidateAPIKey(cfg.APIKey); err != nil {
		return nil, err
	}
	all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	service, err := ytapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	c := &Client{service: service, timeout: cfg.Timeout}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if cfg.MaxRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}
	return c, nil
}

// Search implements discovery.Upstream.Search.
func (c *Client) Search(ctx context.Context, q discovery.SearchQuery) (discovery.SearchPage, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return discovery.SearchPage{}, err
	}
	defer cancel()

	call := c.service.Search.List(searchParts).
		Q(q.Keyword).
		Type(q.Type).
		Order(q.Order).
		VideoDuration(q.VideoDuration).
		MaxResults(q.MaxResults)
	if q.CategoryID != "" {
		call = call.VideoCategoryId(q.CategoryID)
	}
	if q.RegionCode != "" {
		call = call.RegionCode(q.RegionCode)
	}
	if q.RelevanceLanguage != "" {
		call = call.RelevanceLanguage(q.RelevanceLanguage)
	}
	if !q.PublishedAfter.IsZero() {
		call = call.PublishedAfter(formatTime(q.PublishedAfter))
	}
	if !q.PublishedBefore.IsZero() {
		call = call.PublishedBefore(formatTime(q.PublishedBefore))
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return discovery.SearchPage{}, classify("search.list", err)
	}

	page := discovery.SearchPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		page.VideoIDs = append(page.VideoIDs, item.Id.VideoId)
	}
	return page, nil
}

// VideoDetails implements discovery.Upstream.VideoDetails.
func (c *Client) VideoDetails(ctx context.Context, ids []string) ([]discovery.VideoItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := c.service.Videos.List(videoParts).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, classify("videos.list", err)
	}

	items := make([]discovery.VideoItem, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v == nil || v.Id == "" {
			continue
		}
		items = append(items, convertVideo(v))
	}
	return items, nil
}

// VideoCategories implements discovery.Upstream.VideoCategories.
func (c *Client) VideoCategories(ctx context.Context, regionCode string) (map[string]string, error) {
	ctx, cancel, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	call := c.service.VideoCategories.List(categoryParts)
	if regionCode != "" {
		call = call.RegionCode(regionCode)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classify("videoCategories.list", err)
	}

	categories := make(map[string]string, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Snippet == nil {
			continue
		}
		categories[item.Id] = item.Snippet.Title
	}
	return categories, nil
}

// begin waits for the limiter and applies the per-call timeout.
func (c *Client) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, cancel, nil
}

// classify maps API errors onto the discovery sentinels, keeping the original error.
func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			switch item.Reason {
			case "quotaExceeded", "dailyLimitExceeded":
				return fmt.Errorf("%s: %w: %w", op, discovery.ErrQuotaExceeded, err)
			case "keyInvalid":
				return fmt.Errorf("%s: %w: %w", op, discovery.ErrInvalidAPIKey, err)
			}
		}
		if strings.Contains(gerr.Message, "API key not valid") {
			return fmt.Errorf("%s: %w: %w", op, discovery.ErrInvalidAPIKey, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// convertVideo flattens an API video into a VideoItem. Missing parts leave zero values.
func convertVideo(v *ytapi.Video) discovery.VideoItem {
	item := discovery.VideoItem{ID: v.Id}
	if s := v.Snippet; s != nil {
		item.Title = s.Title
		item.Description = s.Description
		item.ChannelID = s.ChannelId
		item.ChannelTitle = s.ChannelTitle
		item.PublishedAt = s.PublishedAt
		item.CategoryID = s.CategoryId
		item.DefaultLanguage = s.DefaultLanguage
		item.DefaultAudioLanguage = s.DefaultAudioLanguage
		item.Tags = s.Tags
		item.Thumbnails = convertThumbnails(s.Thumbnails)
	}
	if st := v.Statistics; st != nil {
		item.ViewCount = int64(st.ViewCount)
		item.LikeCount = int64(st.LikeCount)
		item.CommentCount = int64(st.CommentCount)
	}
	if cd := v.ContentDetails; cd != nil {
		item.Duration = cd.Duration
		item.Definition = cd.Definition
		item.Caption = cd.Caption
		item.LicensedContent = cd.LicensedContent
		item.Projection = cd.Projection
	}
	return item
}

func convertThumbnails(t *ytapi.ThumbnailDetails) discovery.Thumbnails {
	if t == nil {
		return discovery.Thumbnails{}
	}
	url := func(th *ytapi.Thumbnail) string {
		if th == nil {
			return ""
		}
		return th.Url
	}
	return discovery.Thumbnails{
		Default:  url(t.Default),
		Medium:   url(t.Medium),
		High:     url(t.High),
		Standard: url(t.Standard),
		Maxres:   url(t.Maxres),
	}
}
