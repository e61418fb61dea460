// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcpserver exposes the retrieval engine as MCP tools over stdio so
// agent frameworks can call it directly. Each tool maps to one engine
// operation; tool failures are reported in the result rather than crashing
// the session.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/scholar-engine/internal/citewalk"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// Server bridges the engine to MCP tool calls.
type Server struct {
	engine  *engine.Engine
	version string
}

// New builds a Server around eng.
func New(eng *engine.Engine, version string) *Server {
	return &Server{engine: eng, version: version}
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("version", s.version).Msg("starting MCP server on stdio")
	return s.MCPServer().Run(ctx, &mcp.StdioTransport{})
}

// MCPServer builds the MCP server with all tools registered.
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "scholar-engine", Version: s.version}, nil)
	s.registerSearchTools(server)
	s.registerGraphTools(server)
	s.registerFullTextTool(server)
	return server
}

// searchPapersArgs are the inputs to the search_papers tool.
type searchPapersArgs struct {
	Query       string `json:"query"`
	SearchField string `json:"search_field,omitempty"`
	Institution string `json:"institution,omitempty"`
	FromDate    string `json:"from_date,omitempty"`
	ToDate      string `json:"to_date,omitempty"`
	Sort        string `json:"sort,omitempty"`
	Ascending   bool   `json:"ascending,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	Cursor      string `json:"cursor,omitempty"`
}

type searchAuthorsArgs struct {
	Query         string `json:"query"`
	InstitutionID string `json:"institution_id,omitempty"`
	PageSize      int    `json:"page_size,omitempty"`
	Cursor        string `json:"cursor,omitempty"`
}

type searchInstitutionsArgs struct {
	Query    string `json:"query"`
	PageSize int    `json:"page_size,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
}

type papersByAuthorArgs struct {
	AuthorID string `json:"author_id"`
	Sort     string `json:"sort,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
	Cursor   string `json:"cursor,omitempty"`
}

type workArgs struct {
	WorkID string `json:"work_id"`
}

type walkArgs struct {
	WorkID     string `json:"work_id"`
	MaxResults int    `json:"max_results,omitempty"`
}

type paperListPayload struct {
	Papers     []types.Paper `json:"papers"`
	NextCursor string        `json:"next_cursor,omitempty"`
	TotalCount int           `json:"total_count,omitempty"`

	// Truncated is set when a citation walk was interrupted and the list
	// holds only what was gathered before the failure.
	Truncated bool   `json:"truncated,omitempty"`
	Note      string `json:"note,omitempty"`
}

type authorListPayload struct {
	Authors    []types.Author `json:"authors"`
	NextCursor string         `json:"next_cursor,omitempty"`
	TotalCount int            `json:"total_count,omitempty"`
}

type institutionListPayload struct {
	Institutions []types.Institution `json:"institutions"`
	NextCursor   string              `json:"next_cursor,omitempty"`
	TotalCount   int                 `json:"total_count,omitempty"`
}

type referencesPayload struct {
	WorkIDs []string `json:"work_ids"`
}

type fullTextPayload struct {
	Resolved bool            `json:"resolved"`
	Source   string          `json:"source,omitempty"`
	Text     string          `json:"text,omitempty"`
	Attempts []types.Attempt `json:"attempts,omitempty"`
}

func (s *Server) registerSearchTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "search_papers",
		Description: "Search academic papers by keyword. Optional search_field narrows matching to " +
			"\"title\" or \"title_and_abstract\"; institution filters by affiliation name; from_date and " +
			"to_date (YYYY-MM-DD) bound the publication date; sort is one of \"relevance\", " +
			"\"citation-count\", \"publication-date\". Returns one page and a cursor for the next.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input searchPapersArgs) (*mcp.CallToolResult, paperListPayload, error) {
		logCall("search_papers").Str("query", input.Query).Send()

		q := types.SearchQuery{
			Text:        input.Query,
			Kind:        types.KindPaper,
			Field:       types.SearchField(input.SearchField),
			Institution: input.Institution,
			Sort:        types.SortKey(input.Sort),
			Ascending:   input.Ascending,
			PageSize:    input.PageSize,
			Cursor:      input.Cursor,
		}
		var err error
		if q.From, err = parseDate(input.FromDate); err != nil {
			return errResult(err), paperListPayload{}, nil
		}
		if q.To, err = parseDate(input.ToDate); err != nil {
			return errResult(err), paperListPayload{}, nil
		}

		page, err := s.engine.Search(ctx, q)
		if err != nil {
			return errResult(err), paperListPayload{}, nil
		}
		return nil, paperPage(page), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_authors",
		Description: "Search authors by name. Optional institution_id (an OpenAlex institution ID) " +
			"restricts results to authors affiliated with that institution.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input searchAuthorsArgs) (*mcp.CallToolResult, authorListPayload, error) {
		logCall("search_authors").Str("query", input.Query).Send()

		page, err := s.engine.SearchAuthors(ctx, types.SearchQuery{
			Text:        input.Query,
			Institution: input.InstitutionID,
			PageSize:    input.PageSize,
			Cursor:      input.Cursor,
		})
		if err != nil {
			return errResult(err), authorListPayload{}, nil
		}

		payload := authorListPayload{NextCursor: page.NextCursor, TotalCount: page.TotalCount}
		for _, entity := range page.Entities {
			if author, ok := entity.(types.Author); ok {
				payload.Authors = append(payload.Authors, author)
			}
		}
		return nil, payload, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_institutions",
		Description: "Search academic institutions by name.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input searchInstitutionsArgs) (*mcp.CallToolResult, institutionListPayload, error) {
		logCall("search_institutions").Str("query", input.Query).Send()

		page, err := s.engine.SearchInstitutions(ctx, types.SearchQuery{
			Text:     input.Query,
			PageSize: input.PageSize,
			Cursor:   input.Cursor,
		})
		if err != nil {
			return errResult(err), institutionListPayload{}, nil
		}

		payload := institutionListPayload{NextCursor: page.NextCursor, TotalCount: page.TotalCount}
		for _, entity := range page.Entities {
			if inst, ok := entity.(types.Institution); ok {
				payload.Institutions = append(payload.Institutions, inst)
			}
		}
		return nil, payload, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "papers_by_author",
		Description: "List papers written by the given OpenAlex author ID. Optional sort as in " +
			"search_papers; defaults to most-cited first.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input papersByAuthorArgs) (*mcp.CallToolResult, paperListPayload, error) {
		logCall("papers_by_author").Str("author_id", input.AuthorID).Send()

		sort := types.SortKey(input.Sort)
		if sort == "" {
			sort = types.SortCitations
		}
		page, err := s.engine.PapersByAuthor(ctx, input.AuthorID, types.SearchQuery{
			Sort:     sort,
			PageSize: input.PageSize,
			Cursor:   input.Cursor,
		})
		if err != nil {
			return errResult(err), paperListPayload{}, nil
		}
		return nil, paperPage(page), nil
	})
}

func (s *Server) registerGraphTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "works_citing_paper",
		Description: "List papers that cite the given OpenAlex work ID, following result pages up to " +
			"max_results. If the listing is interrupted mid-way, the payload is marked truncated and " +
			"holds what was gathered.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input walkArgs) (*mcp.CallToolResult, paperListPayload, error) {
		logCall("works_citing_paper").Str("work_id", input.WorkID).Send()
		papers, err := s.engine.CitedBy(ctx, workRef(input.WorkID), input.MaxResults)
		return walkResult(papers, err)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name: "related_works_of_paper",
		Description: "List papers OpenAlex considers related to the given work ID, up to max_results. " +
			"If the listing is interrupted mid-way, the payload is marked truncated and holds what was " +
			"gathered.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input walkArgs) (*mcp.CallToolResult, paperListPayload, error) {
		logCall("related_works_of_paper").Str("work_id", input.WorkID).Send()
		papers, err := s.engine.RelatedWorks(ctx, workRef(input.WorkID), input.MaxResults)
		return walkResult(papers, err)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "referenced_works_in_paper",
		Description: "List the OpenAlex work IDs that the given paper cites.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input workArgs) (*mcp.CallToolResult, referencesPayload, error) {
		logCall("referenced_works_in_paper").Str("work_id", input.WorkID).Send()

		refs, err := s.engine.References(ctx, workRef(input.WorkID))
		if err != nil {
			return errResult(err), referencesPayload{}, nil
		}

		payload := referencesPayload{WorkIDs: make([]string, 0, len(refs))}
		for _, ref := range refs {
			payload.WorkIDs = append(payload.WorkIDs, ref.ID)
		}
		return nil, payload, nil
	})
}

func (s *Server) registerFullTextTool(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "fetch_fulltext",
		Description: "Fetch the readable full text of the given OpenAlex work ID, trying its " +
			"open-access URL first and a reader-extraction fallback second. resolved=false with an " +
			"attempt list means no text could be retrieved; that is a normal outcome for paywalled " +
			"papers.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input workArgs) (*mcp.CallToolResult, fullTextPayload, error) {
		logCall("fetch_fulltext").Str("work_id", input.WorkID).Send()

		result, err := s.engine.ResolveFullText(ctx, workRef(input.WorkID))
		if err != nil {
			return errResult(err), fullTextPayload{}, nil
		}
		return nil, fullTextPayload{
			Resolved: result.Resolved(),
			Source:   result.Source,
			Text:     result.Text,
			Attempts: result.Attempts,
		}, nil
	})
}

// walkResult folds a citation-walk outcome into a tool payload. A partial
// walk is a usable answer, so it is returned as data with a truncation note
// instead of an error result.
func walkResult(papers []types.Paper, err error) (*mcp.CallToolResult, paperListPayload, error) {
	if err != nil {
		var partial *citewalk.PartialError
		if errors.As(err, &partial) {
			return nil, paperListPayload{
				Papers:    papers,
				Truncated: true,
				Note:      fmt.Sprintf("listing interrupted after %d results", len(papers)),
			}, nil
		}
		return errResult(err), paperListPayload{}, nil
	}
	return nil, paperListPayload{Papers: papers}, nil
}

func paperPage(page types.SearchPage) paperListPayload {
	return paperListPayload{
		Papers:     page.Papers(),
		NextCursor: page.NextCursor,
		TotalCount: page.TotalCount,
	}
}

func workRef(id string) types.EntityRef {
	return types.EntityRef{ID: id, Kind: types.KindPaper}
}

// errResult reports a tool failure to the client without failing the session.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

func logCall(tool string) *zerolog.Event {
	return log.Info().Str("tool", tool)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
