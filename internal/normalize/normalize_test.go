// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-engine/pkg/types"
)

const sampleWorkJSON = `{
  "id": "https://openalex.org/W2741809807",
  "title": "Attention Is All You Need",
  "publication_year": 2017,
  "publication_date": "2017-06-12",
  "cited_by_count": 98234,
  "authorships": [
    {"author": {"id": "https://openalex.org/A1", "display_name": "Ashish Vaswani"}},
    {"author": {"id": "https://openalex.org/A2", "display_name": "Noam Shazeer"}}
  ],
  "primary_location": {
    "landing_page_url": "https://papers.nips.cc/paper/7181",
    "source": {"display_name": "NeurIPS"}
  },
  "best_oa_location": {
    "pdf_url": "https://arxiv.org/pdf/1706.03762",
    "landing_page_url": "https://arxiv.org/abs/1706.03762"
  },
  "abstract_inverted_index": {
    "We": [0], "propose": [1], "the": [2, 4], "Transformer": [3]
  },
  "referenced_works": ["https://openalex.org/W1", "https://openalex.org/W2"],
  "related_works": ["https://openalex.org/W3"]
}`

func TestPaperFullRecord(t *testing.T) {
	p, err := Paper([]byte(sampleWorkJSON))
	require.NoError(t, err)

	assert.Equal(t, "https://openalex.org/W2741809807", p.ID)
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, 2017, p.Year)
	assert.Equal(t, "2017-06-12", p.Date)
	assert.Equal(t, 98234, p.CitedByCount)
	assert.Equal(t, "NeurIPS", p.Venue)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", p.OpenAccessURL)
	assert.Equal(t, "We propose the Transformer the", p.Abstract)

	require.Len(t, p.Authors, 2)
	assert.Equal(t, "Ashish Vaswani", p.Authors[0].Name)
	assert.Equal(t, types.KindPaper, p.EntityKind())
	assert.Equal(t, types.EntityRef{ID: p.ID, Kind: types.KindPaper}, p.Ref())
}

func TestPaperAllOptionalFieldsMissing(t *testing.T) {
	p, err := Paper([]byte(`{"id": "https://openalex.org/W99"}`))
	require.NoError(t, err)

	assert.Equal(t, "https://openalex.org/W99", p.ID)
	assert.Empty(t, p.Title)
	assert.Zero(t, p.Year)
	assert.Empty(t, p.Date)
	assert.Zero(t, p.CitedByCount)
	assert.Empty(t, p.Authors)
	assert.Empty(t, p.Venue)
	assert.Empty(t, p.OpenAccessURL)
	assert.Empty(t, p.Abstract)
}

func TestPaperMissingIDIsMalformed(t *testing.T) {
	_, err := Paper([]byte(`{"title": "No identifier"}`))

	var merr *MalformedRecordError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, types.KindPaper, merr.Kind)
}

func TestPaperFallsBackToDisplayName(t *testing.T) {
	p, err := Paper([]byte(`{"id": "https://openalex.org/W1", "display_name": "Fallback Title"}`))
	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", p.Title)
}

func TestPreferredFullTextURLChain(t *testing.T) {
	tests := []struct {
		name string
		raw  rawWork
		want string
	}{
		{
			name: "oa pdf wins",
			raw: rawWork{
				BestOALocation:  &rawLocation{PDFURL: "oa-pdf", LandingPageURL: "oa-landing"},
				PrimaryLocation: &rawLocation{PDFURL: "primary-pdf"},
			},
			want: "oa-pdf",
		},
		{
			name: "oa landing before primary",
			raw: rawWork{
				BestOALocation:  &rawLocation{LandingPageURL: "oa-landing"},
				PrimaryLocation: &rawLocation{PDFURL: "primary-pdf"},
			},
			want: "oa-landing",
		},
		{
			name: "primary pdf",
			raw:  rawWork{PrimaryLocation: &rawLocation{PDFURL: "primary-pdf", LandingPageURL: "primary-landing"}},
			want: "primary-pdf",
		},
		{
			name: "primary landing last",
			raw:  rawWork{PrimaryLocation: &rawLocation{LandingPageURL: "primary-landing"}},
			want: "primary-landing",
		},
		{
			name: "nothing available",
			raw:  rawWork{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, preferredFullTextURL(tt.raw))
		})
	}
}

func TestAuthorRecord(t *testing.T) {
	a, err := Author([]byte(`{
		"id": "https://openalex.org/A5023888391",
		"display_name": "Geoffrey Hinton",
		"works_count": 512,
		"cited_by_count": 700000,
		"affiliations": [
			{"institution": {"id": "https://openalex.org/I1", "display_name": "University of Toronto"}}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Geoffrey Hinton", a.Name)
	assert.Equal(t, 512, a.WorksCount)
	require.Len(t, a.Affiliations, 1)
	assert.Equal(t, "University of Toronto", a.Affiliations[0].Name)
	assert.Equal(t, types.KindAuthor, a.EntityKind())
}

func TestAuthorMissingID(t *testing.T) {
	_, err := Author([]byte(`{"display_name": "Nobody"}`))
	var merr *MalformedRecordError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, types.KindAuthor, merr.Kind)
}

func TestInstitutionRecord(t *testing.T) {
	i, err := Institution([]byte(`{
		"id": "https://openalex.org/I63966007",
		"display_name": "Massachusetts Institute of Technology",
		"country_code": "US",
		"works_count": 341000
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Massachusetts Institute of Technology", i.Name)
	assert.Equal(t, "US", i.Country)
	assert.Equal(t, 341000, i.WorksCount)
	assert.Equal(t, types.KindInstitution, i.EntityKind())
}

func TestPageDropsMalformedRecordsOnly(t *testing.T) {
	body := `{
		"meta": {"count": 3, "next_cursor": "abc123"},
		"results": [
			{"id": "https://openalex.org/W1", "title": "First"},
			{"title": "no id, dropped"},
			{"id": "https://openalex.org/W2", "title": "Second"}
		]
	}`

	page, err := Page(types.KindPaper, []byte(body))
	require.NoError(t, err)

	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, "abc123", page.NextCursor)
	require.Len(t, page.Entities, 2)
	assert.Equal(t, "First", page.Entities[0].(types.Paper).Title)
	assert.Equal(t, "Second", page.Entities[1].(types.Paper).Title)
}

func TestPageLastPageHasNoCursor(t *testing.T) {
	page, err := Page(types.KindPaper, []byte(`{"meta": {"count": 1}, "results": [{"id": "https://openalex.org/W1"}]}`))
	require.NoError(t, err)
	assert.Empty(t, page.NextCursor)
}

func TestPageBadEnvelope(t *testing.T) {
	_, err := Page(types.KindPaper, []byte(`not json`))
	assert.Error(t, err)
}

func TestWorkRecord(t *testing.T) {
	paper, referenced, related, err := WorkRecord([]byte(sampleWorkJSON))
	require.NoError(t, err)

	assert.Equal(t, "Attention Is All You Need", paper.Title)
	assert.Equal(t, []string{"https://openalex.org/W1", "https://openalex.org/W2"}, referenced)
	assert.Equal(t, []string{"https://openalex.org/W3"}, related)
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"empty map", map[string][]int{}, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			"repeated word",
			map[string][]int{"the": {0, 4}, "cat": {1}, "sat": {2}, "on": {3}, "mat": {5}},
			"the cat sat on the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}
