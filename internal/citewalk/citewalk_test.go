// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citewalk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/internal/httputil"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func newTestWalker(t *testing.T, serverURL string, pageSize int) *Walker {
	t.Helper()
	client, err := httputil.New(types.EngineConfig{
		Mailto:          "walker@example.com",
		RequestInterval: time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return &Walker{Client: client, WorksURL: serverURL + "/works", PageSize: pageSize}
}

// pageBody builds an OpenAlex-shaped listing page with count total results,
// the given work IDs, and next as the follow-up cursor ("" for the last page).
func pageBody(count int, ids []string, next string) []byte {
	results := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		results = append(results, map[string]any{
			"id":    id,
			"title": "Paper " + id,
		})
	}
	meta := map[string]any{"count": count}
	if next != "" {
		meta["next_cursor"] = next
	}
	body, _ := json.Marshal(map[string]any{"meta": meta, "results": results})
	return body
}

func workIDs(n int, offset int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fmt.Sprintf("https://openalex.org/W%d", offset+i+1))
	}
	return ids
}

func TestCitedByWalksAllPages(t *testing.T) {
	var fetches int
	var filters []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		filters = append(filters, r.URL.Query().Get("filter"))
		switch r.URL.Query().Get("cursor") {
		case "*":
			w.Write(pageBody(60, workIDs(25, 0), "page-two"))
		case "page-two":
			w.Write(pageBody(60, workIDs(25, 25), "page-three"))
		case "page-three":
			w.Write(pageBody(60, workIDs(10, 50), ""))
		default:
			http.Error(w, "unexpected cursor", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(context.Background(), types.EntityRef{ID: "W42", Kind: types.KindPaper}, 100)

	require.NoError(t, err)
	assert.Equal(t, 3, fetches)
	assert.Len(t, papers, 60)
	assert.Equal(t, "https://openalex.org/W1", papers[0].ID)
	assert.Equal(t, "https://openalex.org/W60", papers[59].ID)
	for _, filter := range filters {
		assert.Equal(t, "cites:W42", filter)
	}
}

func TestRelatedWorksFilter(t *testing.T) {
	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		w.Write(pageBody(2, workIDs(2, 0), ""))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	papers, err := walker.RelatedWorks(context.Background(), types.EntityRef{ID: "W7", Kind: types.KindPaper}, 0)

	require.NoError(t, err)
	assert.Equal(t, "related_to:W7", gotFilter)
	assert.Len(t, papers, 2)
}

func TestWalkStopsAtMax(t *testing.T) {
	var fetches int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write(pageBody(500, workIDs(25, 0), "more"))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(context.Background(), types.EntityRef{ID: "W1", Kind: types.KindPaper}, 5)

	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Len(t, papers, 5)
}

func TestWalkRequestsOnlyRemaining(t *testing.T) {
	var perPages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perPages = append(perPages, r.URL.Query().Get("per_page"))
		if r.URL.Query().Get("cursor") == "*" {
			w.Write(pageBody(30, workIDs(25, 0), "next"))
			return
		}
		w.Write(pageBody(30, workIDs(5, 25), ""))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(context.Background(), types.EntityRef{ID: "W1", Kind: types.KindPaper}, 30)

	require.NoError(t, err)
	assert.Len(t, papers, 30)
	// second fetch asks for exactly the 5 outstanding results
	assert.Contains(t, perPages, "5")
}

func TestWalkPartialOnMidWalkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "*" {
			w.Write(pageBody(50, workIDs(25, 0), "doomed"))
			return
		}
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(context.Background(), types.EntityRef{ID: "W1", Kind: types.KindPaper}, 50)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Len(t, papers, 25)
	assert.Len(t, partial.Papers, 25)
	assert.Equal(t, papers, partial.Papers)
}

func TestWalkFirstPageFailureIsPlainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	papers, err := walker.CitedBy(context.Background(), types.EntityRef{ID: "W1", Kind: types.KindPaper}, 10)

	require.Error(t, err)
	assert.Nil(t, papers)
	var partial *PartialError
	assert.False(t, errors.As(err, &partial))
	var serr *httputil.StatusError
	assert.ErrorAs(t, err, &serr)
}

func TestWalkCancelledBetweenPagesReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "*" {
			w.Write(pageBody(50, workIDs(25, 0), "page-two"))
			return
		}
		// Pull the plug while the second page is in flight.
		cancel()
		<-r.Context().Done()
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(ctx, types.EntityRef{ID: "W1", Kind: types.KindPaper}, 50)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, papers, 25)
	assert.Equal(t, papers, partial.Papers)
	assert.Equal(t, "https://openalex.org/W25", papers[24].ID)
}

func TestWalkCancelledOnFirstPageIsPlainError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 25)
	papers, err := walker.CitedBy(ctx, types.EntityRef{ID: "W1", Kind: types.KindPaper}, 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, papers)
	var partial *PartialError
	assert.False(t, errors.As(err, &partial), "nothing gathered, so nothing partial to report")
}

func TestWalkSinglePass(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "*":
			w.Write(pageBody(30, workIDs(25, 0), "page-two"))
		case "page-two":
			w.Write(pageBody(30, workIDs(5, 25), ""))
		default:
			http.Error(w, "unexpected cursor", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	walk := walker.Citing(types.EntityRef{ID: "W1", Kind: types.KindPaper})

	first, err := walk.Next(context.Background(), 25)
	require.NoError(t, err)
	assert.Len(t, first, 25)
	assert.False(t, walk.Done())
	assert.Equal(t, "page-two", walk.Cursor())

	second, err := walk.Next(context.Background(), 25)
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.True(t, walk.Done())
	assert.Empty(t, walk.Cursor())

	// Exhausted walks yield empty pages without another fetch.
	third, err := walk.Next(context.Background(), 25)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestWalkResumesFromCursor(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursors = append(cursors, r.URL.Query().Get("cursor"))
		w.Write(pageBody(30, workIDs(5, 25), ""))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	walk := walker.Related(types.EntityRef{ID: "W1", Kind: types.KindPaper}).From("page-two")

	papers, err := walk.Collect(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, papers, 5)
	assert.Equal(t, []string{"page-two"}, cursors)
}

func TestReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/W99", r.URL.Path)
		w.Write([]byte(`{
			"id": "https://openalex.org/W99",
			"title": "Survey",
			"referenced_works": ["https://openalex.org/W1", "https://openalex.org/W2"]
		}`))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	refs, err := walker.References(context.Background(), types.EntityRef{ID: "W99", Kind: types.KindPaper})

	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, types.EntityRef{ID: "https://openalex.org/W1", Kind: types.KindPaper}, refs[0])
	assert.Equal(t, types.KindPaper, refs[1].Kind)
}

func TestReferencesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "https://openalex.org/W1", "title": "Leaf"}`))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	refs, err := walker.References(context.Background(), types.EntityRef{ID: "W1", Kind: types.KindPaper})

	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestWork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works/W5", r.URL.Path)
		w.Write([]byte(`{"id": "https://openalex.org/W5", "title": "Single", "publication_year": 2021}`))
	}))
	defer server.Close()

	walker := newTestWalker(t, server.URL, 0)
	paper, err := walker.Work(context.Background(), types.EntityRef{ID: "W5", Kind: types.KindPaper})

	require.NoError(t, err)
	assert.Equal(t, "Single", paper.Title)
	assert.Equal(t, 2021, paper.Year)
}
