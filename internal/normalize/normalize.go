// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps raw OpenAlex records into the stable internal entity
// shapes. Missing optional fields degrade to zero values; only a missing
// identifier is an error, and it drops the single record rather than the page.
package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

// MalformedRecordError reports an upstream record that cannot be normalized.
type MalformedRecordError struct {
	Kind   types.Kind
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Kind, e.Reason)
}

// Paper normalizes a raw OpenAlex work record.
func Paper(data []byte) (types.Paper, error) {
	var raw rawWork
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Paper{}, &MalformedRecordError{Kind: types.KindPaper, Reason: err.Error()}
	}
	return paperFromRaw(raw)
}

func paperFromRaw(raw rawWork) (types.Paper, error) {
	if raw.ID == "" {
		return types.Paper{}, &MalformedRecordError{Kind: types.KindPaper, Reason: "missing id"}
	}

	title := raw.Title
	if title == "" {
		title = raw.DisplayName
	}

	p := types.Paper{
		ID:            raw.ID,
		Title:         strings.TrimSpace(title),
		Year:          raw.PublicationYear,
		Date:          raw.PublicationDate,
		CitedByCount:  raw.CitedByCount,
		Venue:         venueName(raw),
		OpenAccessURL: preferredFullTextURL(raw),
		Abstract:      reconstructAbstract(raw.AbstractInvertedIndex),
	}

	for _, authorship := range raw.Authorships {
		if authorship.Author.ID == "" && authorship.Author.DisplayName == "" {
			continue
		}
		p.Authors = append(p.Authors, types.AuthorRef{
			ID:   authorship.Author.ID,
			Name: authorship.Author.DisplayName,
		})
	}
	return p, nil
}

// Author normalizes a raw OpenAlex author record.
func Author(data []byte) (types.Author, error) {
	var raw rawAuthorRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Author{}, &MalformedRecordError{Kind: types.KindAuthor, Reason: err.Error()}
	}
	if raw.ID == "" {
		return types.Author{}, &MalformedRecordError{Kind: types.KindAuthor, Reason: "missing id"}
	}

	a := types.Author{
		ID:           raw.ID,
		Name:         strings.TrimSpace(raw.DisplayName),
		WorksCount:   raw.WorksCount,
		CitedByCount: raw.CitedByCount,
	}
	for _, aff := range raw.Affiliations {
		if aff.Institution.ID == "" && aff.Institution.DisplayName == "" {
			continue
		}
		a.Affiliations = append(a.Affiliations, types.InstitutionRef{
			ID:   aff.Institution.ID,
			Name: aff.Institution.DisplayName,
		})
	}
	return a, nil
}

// Institution normalizes a raw OpenAlex institution record.
func Institution(data []byte) (types.Institution, error) {
	var raw rawInstitution
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Institution{}, &MalformedRecordError{Kind: types.KindInstitution, Reason: err.Error()}
	}
	if raw.ID == "" {
		return types.Institution{}, &MalformedRecordError{Kind: types.KindInstitution, Reason: "missing id"}
	}

	return types.Institution{
		ID:         raw.ID,
		Name:       strings.TrimSpace(raw.DisplayName),
		Country:    raw.CountryCode,
		WorksCount: raw.WorksCount,
	}, nil
}

// Page decodes a results envelope and normalizes each record for kind.
// Malformed records are logged and dropped; the page itself survives.
func Page(kind types.Kind, body []byte) (types.SearchPage, error) {
	var raw rawPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.SearchPage{}, fmt.Errorf("parsing results page: %w", err)
	}

	page := types.SearchPage{
		NextCursor: raw.Meta.NextCursor,
		TotalCount: raw.Meta.Count,
	}

	for _, record := range raw.Results {
		entity, err := one(kind, record)
		if err != nil {
			log.Warn().Str("kind", string(kind)).Err(err).Msg("dropping malformed record")
			continue
		}
		page.Entities = append(page.Entities, entity)
	}
	return page, nil
}

func one(kind types.Kind, record json.RawMessage) (types.Entity, error) {
	switch kind {
	case types.KindPaper:
		return jsonEntity(record, Paper)
	case types.KindAuthor:
		return jsonEntity(record, Author)
	case types.KindInstitution:
		return jsonEntity(record, Institution)
	default:
		return nil, fmt.Errorf("unrecognized entity kind %q", kind)
	}
}

func jsonEntity[E types.Entity](record json.RawMessage, fn func([]byte) (E, error)) (types.Entity, error) {
	e, err := fn(record)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// WorkRecord normalizes a single fetched work and returns its referenced and
// related work IDs alongside the paper.
func WorkRecord(body []byte) (paper types.Paper, referenced, related []string, err error) {
	var raw rawWork
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.Paper{}, nil, nil, fmt.Errorf("parsing work record: %w", err)
	}
	paper, err = paperFromRaw(raw)
	if err != nil {
		return types.Paper{}, nil, nil, err
	}
	return paper, raw.ReferencedWorks, raw.RelatedWorks, nil
}

// venueName extracts the hosting source display name, if any.
func venueName(raw rawWork) string {
	if raw.PrimaryLocation != nil && raw.PrimaryLocation.Source != nil {
		return raw.PrimaryLocation.Source.DisplayName
	}
	return ""
}

// preferredFullTextURL picks the best URL for full-text retrieval:
// open-access PDF, then open-access landing page, then the primary location's
// PDF and landing page.
func preferredFullTextURL(raw rawWork) string {
	if raw.BestOALocation != nil {
		if raw.BestOALocation.PDFURL != "" {
			return raw.BestOALocation.PDFURL
		}
		if raw.BestOALocation.LandingPageURL != "" {
			return raw.BestOALocation.LandingPageURL
		}
	}
	if raw.PrimaryLocation != nil {
		if raw.PrimaryLocation.PDFURL != "" {
			return raw.PrimaryLocation.PDFURL
		}
		if raw.PrimaryLocation.LandingPageURL != "" {
			return raw.PrimaryLocation.LandingPageURL
		}
	}
	return ""
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to the positions where it
// appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}
