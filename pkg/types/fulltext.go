// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Full-text retrieval strategy names, in the order they are attempted.
const (
	StrategyDirect = "direct"
	StrategyJina   = "jina"
)

// Failure categories recorded when a strategy does not yield text.
const (
	FailNetwork      = "network"
	FailNotFound     = "not-found"
	FailAccessDenied = "access-denied"
	FailUnsupported  = "unsupported-format"
)

// Attempt records one full-text strategy that was tried and did not succeed.
type Attempt struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	Failure  string `json:"failure" yaml:"failure"`
}

// FullTextResult is the outcome of full-text resolution. Absence of text is a
// normal outcome, not an error: Source is empty and Attempts lists what was
// tried. When resolution succeeds, Source names the winning strategy and
// Attempts lists only the strategies that failed before it.
type FullTextResult struct {
	Text     string    `json:"text,omitempty" yaml:"text,omitempty"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
	Attempts []Attempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Resolved reports whether any strategy produced usable text.
func (r FullTextResult) Resolved() bool { return r.Source != "" }
