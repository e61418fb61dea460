// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for scholar-engine: normalized
// OpenAlex entities, search queries and pages, full-text outcomes, and stage
// configuration.
package types

// Kind identifies the class of a bibliographic entity.
type Kind string

const (
	KindPaper       Kind = "paper"
	KindAuthor      Kind = "author"
	KindInstitution Kind = "institution"
)

// Valid reports whether k is one of the recognized entity kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPaper, KindAuthor, KindInstitution:
		return true
	}
	return false
}

// EntityRef addresses an entity by its upstream identifier without fetching
// it. The ID is the OpenAlex URL form (e.g. "https://openalex.org/W2741809807").
type EntityRef struct {
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Entity is implemented by the three normalized entity kinds so that a
// SearchPage can carry a mixed, kind-tagged result list.
type Entity interface {
	EntityKind() Kind
	Ref() EntityRef
}

// AuthorRef is a lightweight author reference carried on a Paper.
type AuthorRef struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// InstitutionRef is a lightweight institution reference carried on an Author.
type InstitutionRef struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// Paper is a normalized OpenAlex work. Only ID is guaranteed; every other
// field degrades to its zero value when the upstream record omits it.
type Paper struct {
	// ID is the OpenAlex work identifier, always present.
	ID string `json:"id" yaml:"id"`

	// Title is the work title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Date is the publication date in YYYY-MM-DD form, empty when unknown.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// CitedByCount is the upstream-reported citation count.
	CitedByCount int `json:"cited_by_count" yaml:"cited_by_count"`

	// Authors lists author references in upstream order; may be empty.
	Authors []AuthorRef `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Venue is the display name of the hosting source, empty when unknown.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// OpenAccessURL is the preferred full-text URL, empty when the work has
	// no open-access location.
	OpenAccessURL string `json:"open_access_url,omitempty" yaml:"open_access_url,omitempty"`

	// Abstract is reconstructed from the OpenAlex inverted index; empty when
	// the upstream record withholds it.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// EntityKind returns KindPaper.
func (Paper) EntityKind() Kind { return KindPaper }

// Ref returns an EntityRef addressing the paper.
func (p Paper) Ref() EntityRef { return EntityRef{ID: p.ID, Kind: KindPaper} }

// Author is a normalized OpenAlex author.
type Author struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Affiliations []InstitutionRef `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
	WorksCount   int              `json:"works_count" yaml:"works_count"`
	CitedByCount int              `json:"cited_by_count" yaml:"cited_by_count"`
}

// EntityKind returns KindAuthor.
func (Author) EntityKind() Kind { return KindAuthor }

// Ref returns an EntityRef addressing the author.
func (a Author) Ref() EntityRef { return EntityRef{ID: a.ID, Kind: KindAuthor} }

// Institution is a normalized OpenAlex institution.
type Institution struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	WorksCount int    `json:"works_count" yaml:"works_count"`
}

// EntityKind returns KindInstitution.
func (Institution) EntityKind() Kind { return KindInstitution }

// Ref returns an EntityRef addressing the institution.
func (i Institution) Ref() EntityRef { return EntityRef{ID: i.ID, Kind: KindInstitution} }

// SearchPage is one page of normalized search results.
type SearchPage struct {
	// Entities holds the normalized records in upstream order.
	Entities []Entity `json:"entities" yaml:"entities"`

	// NextCursor resumes the result set; empty when exhausted.
	NextCursor string `json:"next_cursor,omitempty" yaml:"next_cursor,omitempty"`

	// TotalCount is the upstream-reported estimate of matching records.
	TotalCount int `json:"total_count" yaml:"total_count"`
}

// Papers returns the page entities that are papers, in order.
func (p SearchPage) Papers() []Paper {
	var papers []Paper
	for _, e := range p.Entities {
		if paper, ok := e.(Paper); ok {
			papers = append(papers, paper)
		}
	}
	return papers
}
