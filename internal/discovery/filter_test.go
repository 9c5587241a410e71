package discovery

import (
	"strings"
	"testing"
)

var testCategories = map[string]string{"24": "Entertainment"}

func TestFilterVideos(t *testing.T) {
	items := []VideoItem{
		video("a", 900, "PT30S"),
		video("b", 100, "PT30S"),
		video("c", 900, "PT2M"),
		video("a", 900, "PT30S"),
		video("d", 500, ""),
	}

	t.Run("strict", func(t *testing.T) {
		got := FilterVideos(items, FilterCriteria{MinViews: 500, MaxDuration: 60}, testCategories)
		if ids := strings.Join(recordIDs(got), ","); ids != "a,d" {
			t.Errorf("ids = %s, want a,d", ids)
		}
	})

	t.Run("no_duration_limit", func(t *testing.T) {
		got := FilterVideos(items, FilterCriteria{MinViews: 500}, testCategories)
		if ids := strings.Join(recordIDs(got), ","); ids != "a,c,d" {
			t.Errorf("ids = %s, want a,c,d", ids)
		}
	})

	t.Run("no_view_floor", func(t *testing.T) {
		got := FilterVideos(items, FilterCriteria{MaxDuration: 60}, testCategories)
		if ids := strings.Join(recordIDs(got), ","); ids != "a,b,d" {
			t.Errorf("ids = %s, want a,b,d", ids)
		}
	})

	t.Run("record_fields", func(t *testing.T) {
		item := video("x", 1_234_567, "PT1M5S")
		item.CategoryID = "99"
		got := FilterVideos([]VideoItem{item}, FilterCriteria{}, testCategories)[0]
		if got.URL != "https://www.youtube.com/watch?v=x" {
			t.Errorf("url = %q", got.URL)
		}
		if got.DurationSeconds != 65 || got.FormattedDuration != "1:05" || got.FormattedViewCount != "1.2M" {
			t.Errorf("formatting = %d %q %q", got.DurationSeconds, got.FormattedDuration, got.FormattedViewCount)
		}
		if got.CategoryName != "Unknown category (99)" {
			t.Errorf("category name = %q", got.CategoryName)
		}
		if got.Tags == nil {
			t.Error("tags must be an empty slice, not nil")
		}
	})
}

func TestSelectVideos(t *testing.T) {
	// 10 items: 2 satisfy both filters, 5 more satisfy only the view floor.
	items := []VideoItem{
		video("short1", 600_000, "PT30S"),
		video("long1", 2_000_000, "PT3M"),
		video("low1", 10, "PT10S"),
		video("long2", 900_000, "PT2M"),
		video("short2", 800_000, "PT45S"),
		video("low2", 499_999, "PT20S"),
		video("long3", 1_500_000, "PT5M"),
		video("long4", 700_000, "PT90S"),
		video("low3", 1_000, "PT4M"),
		video("long5", 550_000, "PT61S"),
	}
	req := SearchRequest{MinViews: 500_000, MaxDuration: 60, MaxResults: 25}

	t.Run("relaxation_merges_strict_first", func(t *testing.T) {
		sel := SelectVideos(items, req, testCategories)
		if !sel.Relaxed {
			t.Fatal("expected relaxation")
		}
		ids := recordIDs(sel.Videos)
		want := "short2,short1,long1,long3,long2,long4,long5"
		if strings.Join(ids, ",") != want {
			t.Errorf("ids = %v, want %s", ids, want)
		}
		for _, v := range sel.Videos {
			if v.ViewCount < req.MinViews {
				t.Errorf("%s below view floor: %d", v.VideoID, v.ViewCount)
			}
		}
		if sel.Message != "Duration limit relaxed, found 7 videos" {
			t.Errorf("message = %q", sel.Message)
		}
	})

	t.Run("truncated_to_max_results", func(t *testing.T) {
		r := req
		r.MaxResults = 6
		sel := SelectVideos(items, r, testCategories)
		if len(sel.Videos) != 6 {
			t.Fatalf("len = %d, want 6", len(sel.Videos))
		}
		if sel.Videos[0].VideoID != "short2" || sel.Videos[1].VideoID != "short1" {
			t.Errorf("strict results must lead: %v", recordIDs(sel.Videos))
		}
	})

	t.Run("enough_strict_results", func(t *testing.T) {
		r := req
		r.MaxResults = 4
		sel := SelectVideos(items, r, testCategories)
		if sel.Relaxed || len(sel.Videos) != 2 {
			t.Errorf("relaxed=%v len=%d", sel.Relaxed, len(sel.Videos))
		}
	})

	t.Run("relaxation_adds_nothing", func(t *testing.T) {
		only := []VideoItem{video("s", 600_000, "PT10S"), video("low", 5, "PT5M")}
		sel := SelectVideos(only, req, testCategories)
		if sel.Relaxed || sel.Message != "" {
			t.Errorf("relaxed=%v message=%q", sel.Relaxed, sel.Message)
		}
		if len(sel.Videos) != 1 {
			t.Errorf("len = %d", len(sel.Videos))
		}
	})
}

func TestSelectWithoutViewFloor(t *testing.T) {
	items := []VideoItem{
		video("a", 10, "PT30S"),
		video("b", 5000, "PT5M"),
		video("c", 20, "PT59S"),
	}
	sel := SelectWithoutViewFloor(items, SearchRequest{MinViews: 1_000_000, MaxDuration: 60, MaxResults: 25}, nil)
	if ids := strings.Join(recordIDs(sel.Videos), ","); ids != "c,a" {
		t.Errorf("ids = %s, want c,a", ids)
	}
	if !sel.Relaxed || sel.Message != "Search conditions relaxed to show more results" {
		t.Errorf("relaxed=%v message=%q", sel.Relaxed, sel.Message)
	}

	t.Run("empty_is_not_relaxed", func(t *testing.T) {
		sel := SelectWithoutViewFloor(nil, SearchRequest{MaxResults: 25}, nil)
		if sel.Relaxed || len(sel.Videos) != 0 {
			t.Errorf("got %+v", sel)
		}
	})
}

func TestMergeVideos(t *testing.T) {
	primary := []VideoRecord{{VideoID: "a", Title: "strict"}, {VideoID: "b"}}
	extra := []VideoRecord{{VideoID: "c"}, {VideoID: "a", Title: "relaxed"}, {VideoID: "d"}}

	got := MergeVideos(primary, extra, 3)
	if ids := strings.Join(recordIDs(got), ","); ids != "a,b,c" {
		t.Errorf("ids = %s", ids)
	}
	if got[0].Title != "strict" {
		t.Error("primary must win on conflict")
	}
}

func TestCategoryName(t *testing.T) {
	if got := CategoryName("24", testCategories); got != "Entertainment" {
		t.Errorf("got %q", got)
	}
	if got := CategoryName("", nil); got != "Unknown category ()" {
		t.Errorf("got %q", got)
	}
}
