package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

var errUpstream = errors.New("upstream unavailable")

// fakeUpstream serves canned search pages in call order and resolves
// detail requests from a fixed video table.
type fakeUpstream struct {
	mu sync.Mutex

	pages       []SearchPage
	searchErrAt int // 1-based search call that fails; 0 never fails
	searchErr   error
	queries     []SearchQuery

	videos      map[string]VideoItem
	detailErr   func(call int, ids []string) error
	detailCalls [][]string

	categories      map[string]string
	categoryErr     error
	categoryRegions []string
}

func newFakeUpstream(videos ...VideoItem) *fakeUpstream {
	f := &fakeUpstream{
		videos:     make(map[string]VideoItem, len(videos)),
		categories: map[string]string{"22": "People & Blogs", "24": "Entertainment"},
	}
	for _, v := range videos {
		f.videos[v.ID] = v
	}
	return f
}

func (f *fakeUpstream) Search(_ context.Context, q SearchQuery) (SearchPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, q)
	n := len(f.queries)
	if f.searchErrAt == n {
		err := f.searchErr
		if err == nil {
			err = errUpstream
		}
		return SearchPage{}, err
	}
	if n-1 < len(f.pages) {
		return f.pages[n-1], nil
	}
	return SearchPage{}, nil
}

func (f *fakeUpstream) VideoDetails(_ context.Context, ids []string) ([]VideoItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.detailCalls = append(f.detailCalls, ids)
	if f.detailErr != nil {
		if err := f.detailErr(len(f.detailCalls), ids); err != nil {
			return nil, err
		}
	}
	var items []VideoItem
	for _, id := range ids {
		if v, ok := f.videos[id]; ok {
			items = append(items, v)
		}
	}
	return items, nil
}

func (f *fakeUpstream) VideoCategories(_ context.Context, region string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.categoryRegions = append(f.categoryRegions, region)
	if f.categoryErr != nil {
		return nil, f.categoryErr
	}
	return f.categories, nil
}

func (f *fakeUpstream) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func video(id string, views int64, duration string) VideoItem {
	return VideoItem{
		ID:           id,
		Title:        "title " + id,
		ChannelID:    "UC" + id,
		ChannelTitle: "channel " + id,
		PublishedAt:  "2025-01-02T03:04:05Z",
		CategoryID:   "24",
		ViewCount:    views,
		Duration:     duration,
		Definition:   "hd",
		Caption:      "false",
	}
}

func makeIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return ids
}

func recordIDs(videos []VideoRecord) []string {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.VideoID
	}
	return ids
}
