package discovery

import (
	"testing"
	"time"
)

func TestPlanSegments(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 45, 123456789, time.UTC)
	trunc := now.Truncate(time.Second)

	t.Run("all_has_no_segments", func(t *testing.T) {
		if got := PlanSegments(now, WindowAll); len(got) != 0 {
			t.Errorf("expected no segments, got %v", got)
		}
	})

	for _, w := range []Window{1, 2} {
		t.Run("short_window", func(t *testing.T) {
			got := PlanSegments(now, w)
			if len(got) != 1 {
				t.Fatalf("window %d: expected 1 segment, got %d", w, len(got))
			}
			if !got[0].Unbounded() {
				t.Error("single segment must be unbounded")
			}
			if want := trunc.Add(-time.Duration(w) * 24 * time.Hour); !got[0].Start.Equal(want) {
				t.Errorf("start = %v, want %v", got[0].Start, want)
			}
		})
	}

	for _, w := range []Window{3, 4, 5, 7, 10} {
		t.Run("long_window", func(t *testing.T) {
			got := PlanSegments(now, w)
			if len(got) != 3 {
				t.Fatalf("window %d: expected 3 segments, got %d", w, len(got))
			}
			if !got[0].Unbounded() {
				t.Error("newest segment must be unbounded")
			}
			for i := 1; i < len(got); i++ {
				if !got[i].Start.Before(got[i-1].Start) {
					t.Errorf("segment %d start %v not before %v", i, got[i].Start, got[i-1].Start)
				}
				if !got[i].End.Equal(got[i-1].Start) {
					t.Errorf("segment %d end %v leaves a gap to %v", i, got[i].End, got[i-1].Start)
				}
			}
			if want := trunc.Add(-time.Duration(w) * 24 * time.Hour); !got[2].Start.Equal(want) {
				t.Errorf("oldest start = %v, want %v", got[2].Start, want)
			}
			for _, seg := range got {
				if seg.Start.Nanosecond() != 0 || seg.End.Nanosecond() != 0 {
					t.Errorf("bounds not truncated to seconds: %+v", seg)
				}
				if seg.Start.Location() != time.UTC {
					t.Errorf("start not UTC: %v", seg.Start)
				}
			}
		})
	}
}
