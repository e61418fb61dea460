// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// --- Sanitize ---

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "graph neural networks", "graph neural networks"},
		{"commas stripped", "attention, please", "attention please"},
		{"whitespace collapsed", "  deep \t learning \n ", "deep learning"},
		{"empty", "", ""},
		{"only commas", ",,,", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

// --- ClampPageSize ---

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-5))
	assert.Equal(t, 1, ClampPageSize(1))
	assert.Equal(t, 25, ClampPageSize(25))
	assert.Equal(t, MaxPageSize, ClampPageSize(MaxPageSize))
	assert.Equal(t, MaxPageSize, ClampPageSize(MaxPageSize+1))
	assert.Equal(t, MaxPageSize, ClampPageSize(1000000))
}

// --- Build ---

func TestBuildBasicSearch(t *testing.T) {
	params, err := Build(types.SearchQuery{Text: "graph neural networks", Sort: types.SortCitations, PageSize: 25})
	require.NoError(t, err)

	assert.Equal(t, "default.search:graph neural networks", params.Get("filter"))
	assert.Equal(t, "cited_by_count:desc", params.Get("sort"))
	assert.Equal(t, "25", params.Get("per_page"))
	assert.Equal(t, FirstCursor, params.Get("cursor"))
}

func TestBuildPageSizeAlwaysInBounds(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 10, 200, 201, 99999} {
		params, err := Build(types.SearchQuery{Text: "q", PageSize: size})
		require.NoError(t, err)
		got, err := strconv.Atoi(params.Get("per_page"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 1, "page size %d", size)
		assert.LessOrEqual(t, got, MaxPageSize, "page size %d", size)
	}
}

func TestBuildMergesFilterDimensions(t *testing.T) {
	params, err := Build(types.SearchQuery{
		Text:        "transformers",
		Field:       types.FieldTitle,
		AuthorID:    "https://openalex.org/A123",
		Institution: "MIT",
		From:        date("2020-01-01"),
		To:          date("2023-12-31"),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"title.search:transformers,"+
			"authorships.author.id:https://openalex.org/A123,"+
			"raw_affiliation_strings.search:MIT,"+
			"from_publication_date:2020-01-01,"+
			"to_publication_date:2023-12-31",
		params.Get("filter"))
}

func TestBuildDateRangeValidation(t *testing.T) {
	_, err := Build(types.SearchQuery{Text: "q", From: date("2024-01-01"), To: date("2020-01-01")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date range", verr.Field)

	// Equal bounds are accepted.
	params, err := Build(types.SearchQuery{Text: "q", From: date("2022-06-01"), To: date("2022-06-01")})
	require.NoError(t, err)
	assert.Contains(t, params.Get("filter"), "from_publication_date:2022-06-01")
	assert.Contains(t, params.Get("filter"), "to_publication_date:2022-06-01")
}

func TestBuildRejectsUnknownSort(t *testing.T) {
	_, err := Build(types.SearchQuery{Text: "q", Sort: "popularity"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sort", verr.Field)
}

func TestBuildSortDirection(t *testing.T) {
	params, err := Build(types.SearchQuery{Text: "q", Sort: types.SortDate, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, "publication_date", params.Get("sort"))

	params, err = Build(types.SearchQuery{Text: "q", Sort: types.SortDate})
	require.NoError(t, err)
	assert.Equal(t, "publication_date:desc", params.Get("sort"))

	_, err = Build(types.SearchQuery{Text: "q", Sort: types.SortRelevance, Ascending: true})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildEmptySortOmitted(t *testing.T) {
	params, err := Build(types.SearchQuery{Text: "q"})
	require.NoError(t, err)
	assert.False(t, params.Has("sort"))
}

func TestBuildEmptyQueryRejected(t *testing.T) {
	_, err := Build(types.SearchQuery{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = Build(types.SearchQuery{Text: "   ,  "})
	assert.Error(t, err)
}

func TestBuildAuthorKindUsesInstitutionID(t *testing.T) {
	params, err := Build(types.SearchQuery{
		Text:        "hinton",
		Kind:        types.KindAuthor,
		Institution: "https://openalex.org/I123",
	})
	require.NoError(t, err)
	assert.Equal(t, "default.search:hinton,affiliations.institution.id:https://openalex.org/I123", params.Get("filter"))
}

func TestBuildLinkedFilterOnly(t *testing.T) {
	params, err := Build(types.SearchQuery{Linked: "cites:https://openalex.org/W42", PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, "cites:https://openalex.org/W42", params.Get("filter"))
	assert.Equal(t, "50", params.Get("per_page"))
}

func TestBuildCursorPassthrough(t *testing.T) {
	params, err := Build(types.SearchQuery{Text: "q", Cursor: "IjEyMyI="})
	require.NoError(t, err)
	assert.Equal(t, "IjEyMyI=", params.Get("cursor"))
}

func TestBuildRejectsTitleFieldForAuthors(t *testing.T) {
	_, err := Build(types.SearchQuery{Text: "q", Kind: types.KindAuthor, Field: types.FieldTitle})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(types.SearchQuery{Text: "q", Kind: "venue"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)
}
