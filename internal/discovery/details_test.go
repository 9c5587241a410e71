package discovery

import (
	"context"
	"errors"
	"testing"
)

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{0, nil},
		{1, []int{1}},
		{50, []int{50}},
		{51, []int{50, 1}},
		{120, []int{50, 50, 20}},
	}
	for _, tt := range tests {
		got := chunkIDs(makeIDs("v", tt.n), DetailBatchSize)
		if len(got) != len(tt.want) {
			t.Errorf("n=%d: %d chunks, want %d", tt.n, len(got), len(tt.want))
			continue
		}
		for i, c := range got {
			if len(c) != tt.want[i] {
				t.Errorf("n=%d chunk %d: len %d, want %d", tt.n, i, len(c), tt.want[i])
			}
		}
	}
}

func TestDetailFetcher_FetchDetails(t *testing.T) {
	ids := makeIDs("v", 120)
	var videos []VideoItem
	for _, id := range ids {
		videos = append(videos, video(id, 1000, "PT30S"))
	}

	t.Run("all_batches", func(t *testing.T) {
		up := newFakeUpstream(videos...)
		ledger := NewQuotaLedger(nil)
		f := NewDetailFetcher(up, ledger, testLogger())

		res := f.FetchDetails(context.Background(), ids)
		if len(res.Items) != 120 || len(res.Failures) != 0 {
			t.Errorf("items=%d failures=%d", len(res.Items), len(res.Failures))
		}
		if len(up.detailCalls) != 3 {
			t.Errorf("detail calls = %d, want 3", len(up.detailCalls))
		}
		if st := ledger.State(); st.DetailCalls != 120 {
			t.Errorf("detail units = %d, want 120", st.DetailCalls)
		}
	})

	t.Run("partial_failure_continues", func(t *testing.T) {
		up := newFakeUpstream(videos...)
		up.detailErr = func(call int, _ []string) error {
			if call == 2 {
				return errUpstream
			}
			return nil
		}
		ledger := NewQuotaLedger(nil)
		f := NewDetailFetcher(up, ledger, testLogger())

		res := f.FetchDetails(context.Background(), ids)
		if len(res.Items) != 70 {
			t.Errorf("items = %d, want 70", len(res.Items))
		}
		if len(res.Failures) != 1 {
			t.Fatalf("failures = %d, want 1", len(res.Failures))
		}
		fail := res.Failures[0]
		if fail.Index != 1 || len(fail.IDs) != 50 || !errors.Is(fail.Err, errUpstream) {
			t.Errorf("failure = %+v", fail)
		}
		if st := ledger.State(); st.DetailCalls != 70 {
			t.Errorf("failed batch must not be charged, got %d units", st.DetailCalls)
		}
	})

	t.Run("charges_returned_items_only", func(t *testing.T) {
		up := newFakeUpstream(videos[:10]...)
		ledger := NewQuotaLedger(nil)
		f := NewDetailFetcher(up, ledger, testLogger())

		res := f.FetchDetails(context.Background(), append(ids[:10:10], "missing1", "missing2"))
		if len(res.Items) != 10 {
			t.Errorf("items = %d", len(res.Items))
		}
		if st := ledger.State(); st.DetailCalls != 10 {
			t.Errorf("detail units = %d, want 10", st.DetailCalls)
		}
	})

	t.Run("no_ids_no_calls", func(t *testing.T) {
		up := newFakeUpstream()
		f := NewDetailFetcher(up, NewQuotaLedger(nil), testLogger())
		res := f.FetchDetails(context.Background(), nil)
		if len(res.Items) != 0 || len(up.detailCalls) != 0 {
			t.Errorf("expected no calls, got %d", len(up.detailCalls))
		}
	})
}

func TestDetailFetcher_FetchCategories(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		up := newFakeUpstream()
		ledger := NewQuotaLedger(nil)
		f := NewDetailFetcher(up, ledger, testLogger())

		got := f.FetchCategories(context.Background(), "JP")
		if got["24"] != "Entertainment" {
			t.Errorf("categories = %v", got)
		}
		if up.categoryRegions[0] != "JP" {
			t.Errorf("region = %q", up.categoryRegions[0])
		}
		if ledger.State().CategoryCalls != 1 {
			t.Error("category call must be charged")
		}
	})

	t.Run("failure_charged_and_empty", func(t *testing.T) {
		up := newFakeUpstream()
		up.categoryErr = errUpstream
		ledger := NewQuotaLedger(nil)
		f := NewDetailFetcher(up, ledger, testLogger())

		got := f.FetchCategories(context.Background(), "TW")
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil map, got %v", got)
		}
		if ledger.State().CategoryCalls != 1 {
			t.Error("failed category call must still be charged")
		}
	})
}
