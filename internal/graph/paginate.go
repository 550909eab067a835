package graph

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// maxPages caps continuation following per aggregated call. Graph
// collections are unbounded; the ceiling keeps one tool call from
// walking an entire mailbox.
const maxPages = 100

// collectionPage is the subset of a Graph collection response the
// aggregator cares about.
type collectionPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
	Count    *int64            `json:"@odata.count"`
}

// AggregatePages follows @odata.nextLink cursors starting from an
// already-fetched first page and merges all value arrays into a single
// synthetic page. The result carries the combined item count and no
// continuation cursor. Pages that fail to fetch or decode end the walk
// with the items gathered so far.
func AggregatePages(ctx context.Context, exec Executor, first []byte, logger *common.Logger) []byte {
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	var page collectionPage
	if err := json.Unmarshal(first, &page); err != nil || page.Value == nil {
		// Not a collection shape, nothing to aggregate.
		return first
	}

	items := page.Value
	nextLink := page.NextLink
	pages := 1

	for nextLink != "" {
		if pages >= maxPages {
			logger.Warn().Int("pages", pages).Msg("page aggregation ceiling reached, returning partial results")
			break
		}

		// The cursor is an absolute URL carrying its own query string;
		// it replaces the original request entirely.
		shape := RequestShape{Method: http.MethodGet, Path: nextLink}
		result, err := exec.Execute(ctx, shape)
		if err != nil {
			logger.Warn().Str("error", err.Error()).Int("pages", pages).Msg("page fetch failed, returning partial results")
			break
		}

		var next collectionPage
		if err := json.Unmarshal(result.Body, &next); err != nil {
			logger.Warn().Str("error", err.Error()).Int("pages", pages).Msg("page decode failed, returning partial results")
			break
		}

		items = append(items, next.Value...)
		nextLink = next.NextLink
		pages++
	}

	logger.Debug().Int("pages", pages).Int("items", len(items)).Msg("aggregated paged response")

	// Rebuild the envelope around the merged items, preserving unknown
	// top-level fields, dropping the cursor, and rewriting the count to
	// what was actually gathered.
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(first, &envelope); err != nil {
		envelope = map[string]json.RawMessage{}
	}
	delete(envelope, "@odata.nextLink")

	if merged, err := json.Marshal(items); err == nil {
		envelope["value"] = merged
	}
	// The count is rewritten to the gathered total only when the first
	// page carried one.
	if _, hadCount := envelope["@odata.count"]; hadCount {
		if count, err := json.Marshal(len(items)); err == nil {
			envelope["@odata.count"] = count
		}
	}

	out, err := json.Marshal(envelope)
	if err != nil {
		return first
	}
	return out
}
