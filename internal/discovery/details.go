package discovery

import (
	"context"
	"log/slog"
)

// DetailBatchSize is the maximum number of identifiers per detail call.
const DetailBatchSize = 50

// BatchFailure records one detail batch that could not be fetched.
type BatchFailure struct {
	Index int
	IDs   []string
	Err   error
}

// BatchResult aggregates the outcome of all detail batches of one fetch.
type BatchResult struct {
	Items    []VideoItem
	Failures []BatchFailure
}

// DetailFetcher resolves video identifiers to detail items in batches.
type DetailFetcher struct {
	upstream Upstream
	ledger   *QuotaLedger
	log      *slog.Logger
}

// NewDetailFetcher returns a DetailFetcher charging resolved items to ledger.
func NewDetailFetcher(up Upstream, ledger *QuotaLedger, log *slog.Logger) *DetailFetcher {
	return &DetailFetcher{upstream: up, ledger: ledger, log: log}
}

// FetchDetails fetches ids in batches of DetailBatchSize. A failed batch is
// logged and recorded in Failures; the remaining batches are still fetched.
// Each successful batch is charged for the items it actually returned.
func (f *DetailFetcher) FetchDetails(ctx context.Context, ids []string) BatchResult {
	var res BatchResult
	for i, batch := range chunkIDs(ids, DetailBatchSize) {
		items, err := f.upstream.VideoDetails(ctx, batch)
		if err != nil {
			f.log.Warn("detail batch failed",
				slog.Int("batch", i+1),
				slog.Int("ids", len(batch)),
				slog.String("error", err.Error()))
			res.Failures = append(res.Failures, BatchFailure{Index: i, IDs: batch, Err: err})
			continue
		}
		f.ledger.RecordCalls(0, len(items), 0)
		res.Items = append(res.Items, items...)
	}
	return res
}

// FetchCategories fetches the category name map once. The call is charged
// even when it fails; a failure yields an empty map.
func (f *DetailFetcher) FetchCategories(ctx context.Context, region string) map[string]string {
	categories, err := f.upstream.VideoCategories(ctx, region)
	f.ledger.RecordCalls(0, 0, 1)
	if err != nil {
		f.log.Warn("category lookup failed",
			slog.String("region", region),
			slog.String("error", err.Error()))
		return map[string]string{}
	}
	if categories == nil {
		return map[string]string{}
	}
	return categories
}

// chunkIDs splits ids into consecutive chunks of at most size elements.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end:end])
	}
	return chunks
}
