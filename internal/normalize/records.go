// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "encoding/json"

// OpenAlex API JSON structures. Each raw struct is the per-kind field-mapping
// table between the upstream schema and the normalized entities.

type rawPage struct {
	Meta    rawMeta           `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

type rawMeta struct {
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor"`
}

type rawWork struct {
	ID                    string           `json:"id"`
	Title                 string           `json:"title"`
	DisplayName           string           `json:"display_name"`
	PublicationYear       int              `json:"publication_year"`
	PublicationDate       string           `json:"publication_date"`
	CitedByCount          int              `json:"cited_by_count"`
	Authorships           []rawAuthorship  `json:"authorships"`
	PrimaryLocation       *rawLocation     `json:"primary_location"`
	BestOALocation        *rawLocation     `json:"best_oa_location"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	ReferencedWorks       []string         `json:"referenced_works"`
	RelatedWorks          []string         `json:"related_works"`
}

type rawAuthorship struct {
	Author rawAuthorStub `json:"author"`
}

type rawAuthorStub struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type rawLocation struct {
	PDFURL         string     `json:"pdf_url"`
	LandingPageURL string     `json:"landing_page_url"`
	Source         *rawSource `json:"source"`
}

type rawSource struct {
	DisplayName string `json:"display_name"`
}

type rawAuthorRecord struct {
	ID           string           `json:"id"`
	DisplayName  string           `json:"display_name"`
	WorksCount   int              `json:"works_count"`
	CitedByCount int              `json:"cited_by_count"`
	Affiliations []rawAffiliation `json:"affiliations"`
}

type rawAffiliation struct {
	Institution rawInstitutionStub `json:"institution"`
}

type rawInstitutionStub struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type rawInstitution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
	WorksCount  int    `json:"works_count"`
}
