package discovery

import (
	"math"
	"sync"
	"time"
)

// Quota unit costs of the YouTube Data API v3 calls used by the pipeline.
const (
	SearchCallCost   = 100
	DetailItemCost   = 1
	CategoryCallCost = 1

	// DailyQuotaLimit is the default daily quota of an API project.
	DailyQuotaLimit = 10000

	// searchCostEstimate approximates one 25-result search: 100 for the
	// search call plus 25 detail items.
	searchCostEstimate = 125
)

const quotaDateLayout = "2006-01-02"

// QuotaState is the cumulative API usage of one local calendar day.
type QuotaState struct {
	Date          string `json:"date"`
	SearchCalls   int    `json:"search_calls"`
	DetailCalls   int    `json:"video_calls"`
	CategoryCalls int    `json:"category_calls"`
	TotalCost     int    `json:"total_cost"`
}

// QuotaInfo is the caller-facing quota summary attached to search results.
type QuotaInfo struct {
	CurrentCost           int     `json:"current_cost"`
	RemainingQuota        int     `json:"remaining_quota"`
	EstimatedSearchesLeft int     `json:"estimated_searches_left"`
	QuotaPercentage       float64 `json:"quota_percentage"`
	VideoCount            int     `json:"video_count"`
	SearchCalls           int     `json:"search_calls"`
	DetailCalls           int     `json:"video_calls"`
	CategoryCalls         int     `json:"category_calls"`
}

// Cost returns the quota cost of s search calls, d detail items and c category calls.
func Cost(s, d, c int) int {
	return s*SearchCallCost + d*DetailItemCost + c*CategoryCallCost
}

// QuotaLedger tracks the day's quota usage. It never blocks calls; it only
// accounts for them. Counts reset lazily when the local date changes.
type QuotaLedger struct {
	mu    sync.Mutex
	now   func() time.Time
	state QuotaState
}

// NewQuotaLedger returns an empty ledger. If now is nil, time.Now is used.
func NewQuotaLedger(now func() time.Time) *QuotaLedger {
	if now == nil {
		now = time.Now
	}
	l := &QuotaLedger{now: now}
	l.state.Date = l.today()
	return l
}

// RecordCalls adds the given counts to today's usage and returns the updated state.
func (l *QuotaLedger) RecordCalls(search, detail, category int) QuotaState {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	l.state.SearchCalls += search
	l.state.DetailCalls += detail
	l.state.CategoryCalls += category
	l.state.TotalCost = Cost(l.state.SearchCalls, l.state.DetailCalls, l.state.CategoryCalls)
	return l.state
}

// State returns a snapshot of today's usage.
func (l *QuotaLedger) State() QuotaState {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rolloverLocked()
	return l.state
}

// Info returns the quota summary for a result of videoCount videos.
func (l *QuotaLedger) Info(videoCount int) QuotaInfo {
	st := l.State()
	remaining := DailyQuotaLimit - st.TotalCost
	return QuotaInfo{
		CurrentCost:           st.TotalCost,
		RemainingQuota:        remaining,
		EstimatedSearchesLeft: max(0, remaining/searchCostEstimate),
		QuotaPercentage:       math.Round(float64(st.TotalCost)/DailyQuotaLimit*1000) / 10,
		VideoCount:            videoCount,
		SearchCalls:           st.SearchCalls,
		DetailCalls:           st.DetailCalls,
		CategoryCalls:         st.CategoryCalls,
	}
}

// rolloverLocked zeroes the counts when the stored date is not today.
// Caller must hold l.mu.
func (l *QuotaLedger) rolloverLocked() {
	if today := l.today(); l.state.Date != today {
		l.state = QuotaState{Date: today}
	}
}

func (l *QuotaLedger) today() string {
	return l.now().Local().Format(quotaDateLayout)
}
