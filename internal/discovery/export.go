package discovery

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	utf8BOM               = "\ufeff"
	maxDescriptionRunes   = 500
	maxKeywordRunes       = 20
	maxFilenameRunes      = 100
	exportTimestampLayout = "20060102_150405"
	publishedLayout       = "2006-01-02 15:04:05"
)

var csvHeader = []string{
	"Video ID", "Title", "Channel", "Channel ID", "Category", "Published",
	"Views", "Likes", "Comments", "Duration", "Definition", "Captions",
	"Licensed", "URL", "Description", "Tags",
}

// categorySlugs name the standard categories in export filenames.
var categorySlugs = map[string]string{
	"1": "movie", "2": "autos", "10": "music", "15": "pets",
	"17": "sports", "19": "travel", "20": "gaming", "22": "blogs",
	"23": "comedy", "24": "entertainment", "25": "news", "26": "howto",
	"27": "education", "28": "tech",
}

// WriteCSV writes videos as a UTF-8 CSV with a byte order mark so that
// spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, videos []VideoRecord) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range videos {
		if err := cw.Write(csvRow(v)); err != nil {
			return fmt.Errorf("write video %s: %w", v.VideoID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(v VideoRecord) []string {
	return []string{
		v.VideoID,
		v.Title,
		v.ChannelTitle,
		v.ChannelID,
		v.CategoryName,
		formatPublished(v.PublishedAt),
		strconv.FormatInt(v.ViewCount, 10),
		strconv.FormatInt(v.LikeCount, 10),
		strconv.FormatInt(v.CommentCount, 10),
		v.FormattedDuration,
		v.Definition,
		yesNo(v.Caption == "true"),
		yesNo(v.LicensedContent),
		v.URL,
		flattenDescription(v.Description),
		joinTags(v.Tags),
	}
}

func formatPublished(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(publishedLayout)
}

func flattenDescription(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	if utf8.RuneCountInString(s) > maxDescriptionRunes {
		s = string([]rune(s)[:maxDescriptionRunes]) + "..."
	}
	return s
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ExportFilename names an export after the conditions of the search that produced it,
// for example YouTube_music_7h_500K_60s_20250101_120000.csv.
func ExportFilename(req SearchRequest, now time.Time) string {
	ts := now.Format(exportTimestampLayout)
	fallback := "YouTube_Search_" + ts + ".csv"

	var parts []string
	if kw := safeKeyword(req.Keyword); kw != "" && req.Keyword != DefaultKeyword {
		parts = append(parts, kw)
	}
	if req.HasCategory() {
		slug, ok := categorySlugs[req.CategoryFilter]
		if !ok {
			slug = "cat" + req.CategoryFilter
		}
		parts = append(parts, slug)
	}
	if req.HasWindow() {
		parts = append(parts, fmt.Sprintf("%dh", req.Window))
	}
	if req.MinViews > 0 {
		parts = append(parts, viewsPart(req.MinViews))
	}
	if req.HasDurationLimit() {
		parts = append(parts, fmt.Sprintf("%ds", req.MaxDuration))
	}
	if req.MaxResults != DefaultMaxResults {
		parts = append(parts, fmt.Sprintf("%dresults", req.MaxResults))
	}

	if len(parts) == 0 {
		return fallback
	}
	name := "YouTube_" + strings.Join(parts, "_") + "_" + ts + ".csv"
	if utf8.RuneCountInString(name) > maxFilenameRunes {
		return fallback
	}
	return name
}

func viewsPart(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return fmt.Sprintf("%dv", n)
	}
}

// safeKeyword keeps letters, digits, '-' and '_', capped at maxKeywordRunes.
func safeKeyword(kw string) string {
	var b strings.Builder
	n := 0
	for _, r := range kw {
		if n == maxKeywordRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}
