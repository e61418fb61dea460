// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fulltext resolves the readable text of a paper. Strategies are
// tried in a fixed order: a direct fetch of the open-access URL, then Jina
// Reader extraction. A paper with no retrievable text is a normal outcome
// reported in the result, never an error.
package fulltext

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/scholar-engine/internal/httputil"
	"github.com/pdiddy/scholar-engine/pkg/types"
)

// DefaultJinaURL is the Jina Reader endpoint. The target URL is appended as a
// path suffix; Reader fetches it server-side and returns extracted text.
const DefaultJinaURL = "https://r.jina.ai"

// Resolver retrieves full text for papers. JinaURL is a field so tests can
// point the fallback at an httptest server; AllowLocalHosts disables the
// public-address guard for the same reason and must stay false in production.
type Resolver struct {
	Client          *httputil.Client
	JinaURL         string
	AllowLocalHosts bool
}

// Resolve attempts each strategy in order and returns the first text found.
// Context cancellation abandons any strategies not yet tried; the result then
// carries only the attempts that were made.
func (r *Resolver) Resolve(ctx context.Context, paper types.Paper) types.FullTextResult {
	var result types.FullTextResult

	for _, strategy := range r.strategies(paper) {
		if ctx.Err() != nil {
			log.Debug().Str("paper", paper.ID).Msg("full-text resolution cancelled")
			return result
		}

		text, failure := strategy.fetch(ctx, r)
		if failure == "" {
			result.Text = text
			result.Source = strategy.name
			return result
		}
		log.Debug().Str("paper", paper.ID).Str("strategy", strategy.name).
			Str("failure", failure).Msg("full-text strategy failed")
		result.Attempts = append(result.Attempts, types.Attempt{
			Strategy: strategy.name,
			Failure:  failure,
		})
	}

	return result
}

type strategy struct {
	name  string
	fetch func(ctx context.Context, r *Resolver) (string, string)
}

// strategies builds the attempt order for paper. The direct strategy is
// skipped outright when the paper carries no open-access URL; Jina Reader can
// still work from the paper's landing page, so it always runs.
func (r *Resolver) strategies(paper types.Paper) []strategy {
	var out []strategy

	if paper.OpenAccessURL != "" {
		target := paper.OpenAccessURL
		out = append(out, strategy{
			name: types.StrategyDirect,
			fetch: func(ctx context.Context, r *Resolver) (string, string) {
				return r.fetchText(ctx, target)
			},
		})
	}

	if target := r.jinaTarget(paper); target != "" {
		out = append(out, strategy{
			name: types.StrategyJina,
			fetch: func(ctx context.Context, r *Resolver) (string, string) {
				return r.fetchText(ctx, r.jinaBase()+"/"+target)
			},
		})
	}

	return out
}

// jinaTarget picks the URL Jina Reader should extract: the open-access URL
// when the paper has one, the paper's own record URL otherwise. Any Reader
// prefix already present on the target is stripped so it is never doubled.
func (r *Resolver) jinaTarget(paper types.Paper) string {
	target := paper.OpenAccessURL
	if target == "" {
		target = paper.ID
	}
	if target == "" {
		return ""
	}
	for _, prefix := range []string{r.jinaBase() + "/", DefaultJinaURL + "/"} {
		target = strings.TrimPrefix(target, prefix)
	}
	return target
}

func (r *Resolver) jinaBase() string {
	if r.JinaURL != "" {
		return strings.TrimSuffix(r.JinaURL, "/")
	}
	return DefaultJinaURL
}

// fetchText retrieves rawURL and classifies any failure. An empty or
// whitespace-only body counts as unsupported: the fetch worked but yielded
// nothing readable.
func (r *Resolver) fetchText(ctx context.Context, rawURL string) (string, string) {
	if !r.AllowLocalHosts {
		if err := ValidateURL(rawURL); err != nil {
			log.Debug().Str("url", rawURL).Err(err).Msg("rejecting full-text URL")
			return "", types.FailUnsupported
		}
	}

	text, err := r.Client.GetText(ctx, rawURL)
	if err != nil {
		return "", classify(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", types.FailUnsupported
	}
	return text, ""
}

// classify maps a fetch error to a failure category.
func classify(err error) string {
	var serr *httputil.StatusError
	if errors.As(err, &serr) {
		switch {
		case serr.StatusCode == 404 || serr.StatusCode == 410:
			return types.FailNotFound
		case serr.StatusCode == 401 || serr.StatusCode == 402 || serr.StatusCode == 403:
			return types.FailAccessDenied
		case serr.Transient():
			return types.FailNetwork
		default:
			return types.FailUnsupported
		}
	}
	return types.FailNetwork
}

// ValidateURL rejects URLs the resolver must never fetch: non-HTTP schemes
// and hosts that resolve inside private or loopback address space. Full-text
// URLs come from upstream metadata, which is outside our control.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return errors.New("URL has no host")
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
			addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
			return fmt.Errorf("host %s is not publicly routable", host)
		}
		return nil
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") ||
		strings.HasSuffix(lower, ".local") || strings.HasSuffix(lower, ".internal") {
		return fmt.Errorf("host %s is not publicly routable", host)
	}
	if !strings.Contains(host, ".") {
		return fmt.Errorf("host %s is not a fully qualified name", host)
	}
	return nil
}
