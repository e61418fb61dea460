// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query translates tool-level search criteria into OpenAlex query
// parameters: filter expressions, sort tokens, and cursor pagination. All
// validation happens here, before any network call.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

const (
	// DefaultPageSize matches the upstream per_page the original tooling used.
	DefaultPageSize = 10

	// MaxPageSize is the OpenAlex per_page ceiling.
	MaxPageSize = 200

	// FirstCursor starts a cursor-paginated walk from the beginning.
	FirstCursor = "*"
)

// ValidationError reports invalid caller input. It is never retried and is
// raised before any request leaves the process.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// sortTokens maps the tool-level sort enum to OpenAlex sort fields.
var sortTokens = map[types.SortKey]string{
	types.SortRelevance: "relevance_score",
	types.SortCitations: "cited_by_count",
	types.SortDate:      "publication_date",
}

// searchFields maps the tool-level search field enum to OpenAlex filter keys.
var searchFields = map[types.SearchField]string{
	types.FieldDefault:       "default",
	types.FieldTitle:         "title",
	types.FieldTitleAbstract: "title_and_abstract",
}

// Sanitize strips commas (they are the OpenAlex filter separator) and
// collapses whitespace in search text.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// ClampPageSize bounds n to [1, MaxPageSize], substituting the default for
// zero or negative values.
func ClampPageSize(n int) int {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Build translates q into OpenAlex query parameters. Distinct filter
// dimensions are joined with "," which OpenAlex interprets as AND.
func Build(q types.SearchQuery) (url.Values, error) {
	if q.IsEmpty() {
		return nil, &ValidationError{Field: "query", Reason: "no search text or filter provided"}
	}

	kind := q.Kind
	if kind == "" {
		kind = types.KindPaper
	}
	if !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unrecognized entity kind %q", q.Kind)}
	}

	filters, err := buildFilters(q, kind)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return nil, &ValidationError{Field: "query", Reason: "no search text or filter provided"}
	}

	params := url.Values{
		"per_page": {strconv.Itoa(ClampPageSize(q.PageSize))},
		"filter":   {strings.Join(filters, ",")},
	}

	sort, err := sortToken(q)
	if err != nil {
		return nil, err
	}
	if sort != "" {
		params.Set("sort", sort)
	}

	cursor := q.Cursor
	if cursor == "" {
		cursor = FirstCursor
	}
	params.Set("cursor", cursor)

	return params, nil
}

func buildFilters(q types.SearchQuery, kind types.Kind) ([]string, error) {
	var filters []string

	if text := Sanitize(q.Text); text != "" {
		field := q.Field
		if field == "" {
			field = types.FieldDefault
		}
		key, ok := searchFields[field]
		if !ok {
			return nil, &ValidationError{Field: "field", Reason: fmt.Sprintf("unrecognized search field %q", q.Field)}
		}
		if kind != types.KindPaper && field != types.FieldDefault {
			return nil, &ValidationError{Field: "field", Reason: "title search applies to papers only"}
		}
		filters = append(filters, fmt.Sprintf("%s.search:%s", key, text))
	}

	if q.Linked != "" {
		filters = append(filters, q.Linked)
	}

	if q.AuthorID != "" {
		if kind != types.KindPaper {
			return nil, &ValidationError{Field: "author_id", Reason: "author filter applies to paper searches only"}
		}
		filters = append(filters, "authorships.author.id:"+q.AuthorID)
	}

	if inst := Sanitize(q.Institution); inst != "" {
		switch kind {
		case types.KindPaper:
			filters = append(filters, "raw_affiliation_strings.search:"+inst)
		case types.KindAuthor:
			filters = append(filters, "affiliations.institution.id:"+inst)
		default:
			return nil, &ValidationError{Field: "institution", Reason: "institution filter applies to paper and author searches only"}
		}
	}

	dateFilters, err := dateRange(q)
	if err != nil {
		return nil, err
	}
	filters = append(filters, dateFilters...)

	return filters, nil
}

func dateRange(q types.SearchQuery) ([]string, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return nil, &ValidationError{
			Field:  "date range",
			Reason: fmt.Sprintf("start %s is after end %s", q.From.Format("2006-01-02"), q.To.Format("2006-01-02")),
		}
	}

	var filters []string
	if !q.From.IsZero() {
		filters = append(filters, "from_publication_date:"+q.From.Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		filters = append(filters, "to_publication_date:"+q.To.Format("2006-01-02"))
	}
	return filters, nil
}

// sortToken maps the sort enum to an upstream token. An unrecognized key is a
// ValidationError, never silently defaulted; an empty key preserves the
// upstream default order.
func sortToken(q types.SearchQuery) (string, error) {
	if q.Sort == "" {
		return "", nil
	}
	token, ok := sortTokens[q.Sort]
	if !ok {
		return "", &ValidationError{Field: "sort", Reason: fmt.Sprintf("unrecognized sort key %q", q.Sort)}
	}
	if q.Ascending {
		if q.Sort == types.SortRelevance {
			return "", &ValidationError{Field: "sort", Reason: "relevance only sorts descending"}
		}
		return token, nil
	}
	return token + ":desc", nil
}
