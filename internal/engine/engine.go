// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine wires the retrieval components into one facade. An Engine
// owns a single rate-limited client so every operation, whatever its caller,
// shares the same upstream pacing.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/scholar-engine/internal/citewalk"
	"github.com/pdiddy/scholar-engine/internal/fulltext"
	"github.com/pdiddy/scholar-engine/internal/httputil"
	"github.com/pdiddy/scholar-engine/internal/normalize"
	"github.com/pdiddy/scholar-engine/internal/query"
	"github.com/pdiddy/scholar-engine/internal/webcache"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// DefaultBaseURL is the public OpenAlex API root.
const DefaultBaseURL = "https://api.openalex.org"

// Engine exposes the public retrieval operations. Construct with New; the
// zero value is not usable.
type Engine struct {
	client   *httputil.Client
	walker   *citewalk.Walker
	resolver *fulltext.Resolver
	cache    *webcache.Cache
	baseURL  string
	maxWalk  int
}

// New builds an Engine from cfg. The response cache is opened here when
// enabled; a cache that fails to open is reported and skipped rather than
// blocking startup.
func New(cfg types.EngineConfig) (*Engine, error) {
	var cache *webcache.Cache
	if cfg.Cache.Enabled {
		var err error
		cache, err = webcache.Open(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Cache.Path).
				Msg("response cache unavailable; continuing without it")
			cache = nil
		}
	}

	client, err := httputil.New(cfg, cache)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	maxWalk := cfg.MaxWalkResults
	if maxWalk <= 0 {
		maxWalk = citewalk.DefaultMaxResults
	}

	return &Engine{
		client:   client,
		walker:   &citewalk.Walker{Client: client, WorksURL: baseURL + "/works"},
		resolver: &fulltext.Resolver{Client: client},
		cache:    cache,
		baseURL:  baseURL,
		maxWalk:  maxWalk,
	}, nil
}

// Close releases the response cache. Safe on an Engine without one.
func (e *Engine) Close() error {
	return e.cache.Close()
}

// Search runs an entity search. The query's Kind selects the endpoint; an
// empty Kind searches papers.
func (e *Engine) Search(ctx context.Context, q types.SearchQuery) (types.SearchPage, error) {
	if q.Kind == "" {
		q.Kind = types.KindPaper
	}
	return e.search(ctx, q)
}

// SearchAuthors searches authors by name.
func (e *Engine) SearchAuthors(ctx context.Context, q types.SearchQuery) (types.SearchPage, error) {
	q.Kind = types.KindAuthor
	return e.search(ctx, q)
}

// SearchInstitutions searches institutions by name.
func (e *Engine) SearchInstitutions(ctx context.Context, q types.SearchQuery) (types.SearchPage, error) {
	q.Kind = types.KindInstitution
	return e.search(ctx, q)
}

// PapersByAuthor lists papers written by the given author. Sort, paging, and
// date bounds from q apply; its Text and Kind are ignored.
func (e *Engine) PapersByAuthor(ctx context.Context, authorID string, q types.SearchQuery) (types.SearchPage, error) {
	q.Kind = types.KindPaper
	q.Text = ""
	q.AuthorID = authorID
	return e.search(ctx, q)
}

func (e *Engine) search(ctx context.Context, q types.SearchQuery) (types.SearchPage, error) {
	params, err := query.Build(q)
	if err != nil {
		return types.SearchPage{}, err
	}

	endpoint, err := e.endpoint(q.Kind)
	if err != nil {
		return types.SearchPage{}, err
	}

	log.Debug().Str("kind", string(q.Kind)).Str("text", q.Text).Msg("searching")
	body, err := e.client.Get(ctx, endpoint, params)
	if err != nil {
		return types.SearchPage{}, err
	}
	return normalize.Page(q.Kind, body)
}

// CitedBy returns papers that cite the given work, up to maxResults (0 means
// the configured walk cap). A *citewalk.PartialError accompanies partial
// results when a multi-page walk is interrupted.
func (e *Engine) CitedBy(ctx context.Context, ref types.EntityRef, maxResults int) ([]types.Paper, error) {
	return e.walker.CitedBy(ctx, ref, e.clampWalk(maxResults))
}

// RelatedWorks returns papers OpenAlex considers related to the given work.
func (e *Engine) RelatedWorks(ctx context.Context, ref types.EntityRef, maxResults int) ([]types.Paper, error) {
	return e.walker.RelatedWorks(ctx, ref, e.clampWalk(maxResults))
}

// References returns the works the given paper cites.
func (e *Engine) References(ctx context.Context, ref types.EntityRef) ([]types.EntityRef, error) {
	return e.walker.References(ctx, ref)
}

// Work fetches a single paper record.
func (e *Engine) Work(ctx context.Context, ref types.EntityRef) (types.Paper, error) {
	return e.walker.Work(ctx, ref)
}

// ResolveFullText fetches the work record for ref and resolves its full text.
// An unresolved text is a normal result; the error covers only the metadata
// fetch.
func (e *Engine) ResolveFullText(ctx context.Context, ref types.EntityRef) (types.FullTextResult, error) {
	paper, err := e.walker.Work(ctx, ref)
	if err != nil {
		return types.FullTextResult{}, fmt.Errorf("resolving full text for %s: %w", ref.ID, err)
	}
	log.Debug().Str("paper", paper.ID).Str("oa_url", paper.OpenAccessURL).Msg("resolving full text")
	return e.resolver.Resolve(ctx, paper), nil
}

func (e *Engine) clampWalk(maxResults int) int {
	if maxResults <= 0 || maxResults > e.maxWalk {
		return e.maxWalk
	}
	return maxResults
}

func (e *Engine) endpoint(kind types.Kind) (string, error) {
	switch kind {
	case types.KindPaper:
		return e.baseURL + "/works", nil
	case types.KindAuthor:
		return e.baseURL + "/authors", nil
	case types.KindInstitution:
		return e.baseURL + "/institutions", nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", kind)
	}
}
