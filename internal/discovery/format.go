package discovery

import (
	"fmt"
	"strconv"

	"github.com/sosodev/duration"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// WatchURL returns the playback URL of a video.
func WatchURL(id string) string { return watchURLPrefix + id }

// FormatViewCount renders a count as 1.2M, 3.4K or the plain number.
func FormatViewCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.FormatInt(n, 10)
	}
}

// DurationSeconds parses an ISO 8601 duration such as "PT1M5S".
// Empty or unparsable input yields 0.
func DurationSeconds(iso string) int {
	if iso == "" {
		return 0
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0
	}
	return int(d.ToTimeDuration().Seconds())
}

// FormatDuration renders an ISO 8601 duration as h:mm:ss, or m:ss under an hour.
// Unparsable input is returned unchanged.
func FormatDuration(iso string) string {
	d, err := duration.Parse(iso)
	if iso == "" || err != nil {
		return iso
	}
	total := int(d.ToTimeDuration().Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
