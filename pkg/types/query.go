// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SortKey selects the result ordering for a search.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortCitations SortKey = "citation-count"
	SortDate      SortKey = "publication-date"
)

// SearchField selects which work fields the query text matches against.
type SearchField string

const (
	FieldDefault       SearchField = "default"
	FieldTitle         SearchField = "title"
	FieldTitleAbstract SearchField = "title_and_abstract"
)

// SearchQuery holds tool-level search criteria before translation into
// OpenAlex query parameters. The zero value of an optional field means the
// corresponding filter dimension is absent.
type SearchQuery struct {
	// Text is the keyword or phrase to search for.
	Text string `json:"text" yaml:"text"`

	// Kind selects the entity endpoint; defaults to KindPaper when empty.
	Kind Kind `json:"kind,omitempty" yaml:"kind,omitempty"`

	// Field selects which work fields Text matches (papers only).
	Field SearchField `json:"field,omitempty" yaml:"field,omitempty"`

	// AuthorID restricts paper results to works by the given OpenAlex author.
	AuthorID string `json:"author_id,omitempty" yaml:"author_id,omitempty"`

	// Institution restricts results by institution: an affiliation name for
	// papers, an OpenAlex institution ID for authors.
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`

	// Linked is a citation-graph filter such as "cites:W…" or
	// "related_to:W…"; set by the citation walker, not by callers.
	Linked string `json:"-" yaml:"-"`

	// From and To bound the publication date range, inclusive.
	From time.Time `json:"from,omitempty" yaml:"from,omitempty"`
	To   time.Time `json:"to,omitempty" yaml:"to,omitempty"`

	// Sort orders results; empty preserves the upstream default order.
	Sort SortKey `json:"sort,omitempty" yaml:"sort,omitempty"`

	// Ascending reverses the sort direction, which defaults to descending.
	Ascending bool `json:"ascending,omitempty" yaml:"ascending,omitempty"`

	// PageSize is clamped to [1, MaxPageSize]; 0 means the default.
	PageSize int `json:"page_size,omitempty" yaml:"page_size,omitempty"`

	// Cursor resumes a paginated result set; empty starts from the beginning.
	Cursor string `json:"cursor,omitempty" yaml:"cursor,omitempty"`
}

// IsEmpty reports whether the query carries no searchable dimension at all.
func (q SearchQuery) IsEmpty() bool {
	return q.Text == "" && q.AuthorID == "" && q.Institution == "" && q.Linked == ""
}
