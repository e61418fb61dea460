// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citewalk traverses citation relationships: works citing a paper,
// works related to it, and the references it makes. Multi-page result sets
// are walked with upstream cursors; a walk interrupted mid-way reports what
// it already gathered instead of discarding it.
package citewalk

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/scholar-engine/internal/httputil"
	"github.com/pdiddy/scholar-engine/internal/normalize"
	"github.com/pdiddy/scholar-engine/internal/query"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// DefaultMaxResults caps a walk when the caller does not give a limit. The
// upstream imposes no bound of its own, so the cap is ours.
const DefaultMaxResults = 200

// PartialError reports a walk that ended early after retries were exhausted
// or the caller's deadline hit. Papers holds everything gathered before the
// interruption, in upstream order.
type PartialError struct {
	Papers []types.Paper
	Err    error
}

// Error implements the error interface.
func (e *PartialError) Error() string {
	return fmt.Sprintf("citation walk interrupted after %d results: %v", len(e.Papers), e.Err)
}

// Unwrap returns the underlying cause.
func (e *PartialError) Unwrap() error { return e.Err }

// Walker issues paginated citation-graph queries through the rate-limited
// client. WorksURL is a field rather than a package constant so tests can
// point it at an httptest server.
type Walker struct {
	Client   *httputil.Client
	WorksURL string

	// PageSize is the per-fetch page size; 0 means the query default.
	PageSize int
}

// Walk is a single-pass traversal of one citation listing. Each Next call
// fetches a page and advances the upstream cursor; a Walk cannot be rewound,
// but Cursor exposes the position needed to resume a fresh Walk with From.
type Walk struct {
	walker *Walker
	filter string
	cursor string
	done   bool
}

// Citing starts a walk over papers citing ref.
func (w *Walker) Citing(ref types.EntityRef) *Walk {
	return &Walk{walker: w, filter: "cites:" + ref.ID, cursor: query.FirstCursor}
}

// Related starts a walk over papers related to ref.
func (w *Walker) Related(ref types.EntityRef) *Walk {
	return &Walk{walker: w, filter: "related_to:" + ref.ID, cursor: query.FirstCursor}
}

// From positions the walk at a previously observed cursor. An empty cursor
// leaves the walk at the beginning.
func (wk *Walk) From(cursor string) *Walk {
	if cursor != "" {
		wk.cursor = cursor
	}
	return wk
}

// Cursor returns the upstream cursor resuming after the last fetched page,
// empty once the listing is exhausted.
func (wk *Walk) Cursor() string { return wk.cursor }

// Done reports whether the listing is exhausted.
func (wk *Walk) Done() bool { return wk.done }

// Next fetches the next page of up to pageSize papers (0 means the query
// default) and advances the cursor. An exhausted walk returns an empty page.
func (wk *Walk) Next(ctx context.Context, pageSize int) ([]types.Paper, error) {
	if wk.done {
		return nil, nil
	}

	params, err := query.Build(types.SearchQuery{
		Kind:     types.KindPaper,
		Linked:   wk.filter,
		PageSize: pageSize,
		Cursor:   wk.cursor,
	})
	if err != nil {
		return nil, err
	}

	body, err := wk.walker.Client.Get(ctx, wk.walker.WorksURL, params)
	if err != nil {
		return nil, fmt.Errorf("citation walk %s: %w", wk.filter, err)
	}

	page, err := normalize.Page(types.KindPaper, body)
	if err != nil {
		return nil, fmt.Errorf("citation walk %s: %w", wk.filter, err)
	}

	wk.cursor = page.NextCursor
	wk.done = page.NextCursor == ""
	return page.Papers(), nil
}

// Collect drains the walk until maxResults papers are gathered (0 means
// DefaultMaxResults) or the listing is exhausted, whichever comes first.
// Order is upstream-defined and preserved. A failure after at least one
// fetched page, including context cancellation, returns a *PartialError
// carrying everything gathered; a first-page failure is a plain error.
func (wk *Walk) Collect(ctx context.Context, maxResults int) ([]types.Paper, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var papers []types.Paper
	for len(papers) < maxResults && !wk.done {
		pageSize := wk.walker.PageSize
		if remaining := maxResults - len(papers); pageSize <= 0 || pageSize > remaining {
			pageSize = remaining
		}

		pagePapers, err := wk.Next(ctx, pageSize)
		if err != nil {
			return interrupted(papers, wk.filter, err)
		}
		papers = append(papers, pagePapers...)
	}

	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}
	return papers, nil
}

// interrupted converts a mid-walk failure into a PartialError when prior
// pages were already fetched, and passes the error through otherwise.
func interrupted(papers []types.Paper, filter string, err error) ([]types.Paper, error) {
	if len(papers) == 0 {
		return nil, err
	}
	log.Warn().Str("filter", filter).Int("gathered", len(papers)).Err(err).
		Msg("citation walk interrupted; returning partial results")
	return papers, &PartialError{Papers: papers, Err: err}
}

// CitedBy returns up to maxResults papers citing ref, in upstream order.
func (w *Walker) CitedBy(ctx context.Context, ref types.EntityRef, maxResults int) ([]types.Paper, error) {
	return w.Citing(ref).Collect(ctx, maxResults)
}

// RelatedWorks returns up to maxResults papers related to ref, in upstream
// order.
func (w *Walker) RelatedWorks(ctx context.Context, ref types.EntityRef, maxResults int) ([]types.Paper, error) {
	return w.Related(ref).Collect(ctx, maxResults)
}

// References fetches the work record for ref and returns the works it cites
// as paper references, in upstream order. OpenAlex exposes references as bare
// IDs on the work record rather than a paginated listing.
func (w *Walker) References(ctx context.Context, ref types.EntityRef) ([]types.EntityRef, error) {
	body, err := w.Client.Get(ctx, w.WorksURL+"/"+ref.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching work %s: %w", ref.ID, err)
	}

	_, referenced, _, err := normalize.WorkRecord(body)
	if err != nil {
		return nil, err
	}

	refs := make([]types.EntityRef, 0, len(referenced))
	for _, id := range referenced {
		refs = append(refs, types.EntityRef{ID: id, Kind: types.KindPaper})
	}
	return refs, nil
}

// Work fetches and normalizes a single work record.
func (w *Walker) Work(ctx context.Context, ref types.EntityRef) (types.Paper, error) {
	body, err := w.Client.Get(ctx, w.WorksURL+"/"+ref.ID, nil)
	if err != nil {
		return types.Paper{}, fmt.Errorf("fetching work %s: %w", ref.ID, err)
	}
	paper, _, _, err := normalize.WorkRecord(body)
	return paper, err
}
