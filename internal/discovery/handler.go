package discovery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"shorts-discovery/internal/platform/metrics"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	jsonContentType = "application/json"
	maxRequestBytes = 1 << 20
)

const quotaExhaustedMessage = "API quota exhausted, retry tomorrow or raise the quota"

// invalidKeyDetails is the self-diagnosis checklist returned with an invalid API key.
var invalidKeyDetails = []string{
	"Check the following:",
	"1. The API key format is correct (starts with AIzaSy, 39 characters)",
	"2. YouTube Data API v3 is enabled in the Google Cloud Console",
	"3. The API key has the right restrictions and permissions",
	"4. The daily quota has not been exceeded",
}

// Handler exposes the search service over HTTP using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Search handles POST /search.
// Body: { "keyword": "cats", "timeFilter": 7, "minViews": "500000", "maxDuration": "all" }.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body searchBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&body); err != nil {
		h.log.Debug("invalid search body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	req, err := body.request()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	res, err := h.svc.Search(r.Context(), req)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncSearches()
		if res.Relaxed {
			h.metrics.IncRelaxedSearches()
		}
		h.metrics.AddFailedDetailBatches(res.FailedBatches)
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) writeSearchError(w http.ResponseWriter, err error) {
	var (
		cfgErr  *ConfigError
		discErr *DiscoveryError
	)
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		h.log.Warn("search rejected quota exceeded", slog.String("error", err.Error()))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: quotaExhaustedMessage})
	case errors.Is(err, ErrInvalidAPIKey):
		h.log.Error("search rejected invalid api key", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "API key not valid", Details: invalidKeyDetails})
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: cfgErr.Error()})
	case errors.Is(err, ErrInvalidRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.As(err, &discErr):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "search failed: " + discErr.Error()})
	default:
		h.log.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "search failed: " + err.Error()})
	}
}

// Quota handles GET /quota.
func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.QuotaInfo())
}

// ExportCSV handles GET /export.csv.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	last, err := h.svc.LastResult()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, last.Videos); err != nil {
		h.log.Error("csv export failed", slog.String("search_id", last.SearchID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "export failed: " + err.Error()})
		return
	}

	filename := ExportFilename(last.Request, h.svc.Now())
	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())

	h.log.Info("csv exported",
		slog.String("search_id", last.SearchID),
		slog.String("filename", filename),
		slog.Int("videos", len(last.Videos)))
	if h.metrics != nil {
		h.metrics.IncExports()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// searchBody is the inbound search JSON. Numeric fields accept JSON numbers,
// numeric strings, or "all" where that is meaningful.
type searchBody struct {
	Keyword        string    `json:"keyword"`
	CategoryFilter flexValue `json:"categoryFilter"`
	RegionFilter   flexValue `json:"regionFilter"`
	TimeFilter     flexValue `json:"timeFilter"`
	MinViews       flexValue `json:"minViews"`
	MaxDuration    flexValue `json:"maxDuration"`
	MaxResults     flexValue `json:"maxResults"`
}

func (b searchBody) request() (SearchRequest, error) {
	req := SearchRequest{
		Keyword:        b.Keyword,
		CategoryFilter: b.CategoryFilter.stringOr(AllFilter),
		RegionFilter:   b.RegionFilter.stringOr(AllFilter),
	}

	window, err := b.TimeFilter.intOr("timeFilter", 0)
	if err != nil {
		return req, err
	}
	req.Window = Window(window)

	if req.MinViews, err = b.MinViews.int64Or("minViews", DefaultMinViews); err != nil {
		return req, err
	}
	if req.MaxDuration, err = b.MaxDuration.intOr("maxDuration", NoDurationLimit); err != nil {
		return req, err
	}
	if req.MaxResults, err = b.MaxResults.intOr("maxResults", DefaultMaxResults); err != nil {
		return req, err
	}
	return req, nil
}

// flexValue holds a scalar JSON value as text. Unset or null values are not set.
type flexValue struct {
	raw string
	set bool
}

func (f *flexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.raw, f.set = strings.TrimSpace(s), true
		return nil
	}
	if b[0] == '{' || b[0] == '[' {
		return fmt.Errorf("expected a number or string, got %s", b)
	}
	f.raw, f.set = string(b), true
	return nil
}

func (f flexValue) stringOr(def string) string {
	if !f.set || f.raw == "" {
		return def
	}
	return f.raw
}

// int64Or parses the value; unset yields def and "all" yields 0.
func (f flexValue) int64Or(field string, def int64) (int64, error) {
	if !f.set || f.raw == "" {
		return def, nil
	}
	if strings.EqualFold(f.raw, AllFilter) {
		return 0, nil
	}
	n, err := strconv.ParseInt(f.raw, 10, 64)
	if err != nil {
		// JSON numbers such as 500000.0 are accepted when integral.
		fl, ferr := strconv.ParseFloat(f.raw, 64)
		if ferr != nil || fl != float64(int64(fl)) {
			return 0, fmt.Errorf("%w: %s must be an integer or \"all\", got %q", ErrInvalidRequest, field, f.raw)
		}
		n = int64(fl)
	}
	return n, nil
}

func (f flexValue) intOr(field string, def int) (int, error) {
	n, err := f.int64Or(field, int64(def))
	return int(n), err
}
