package retrieval

import (
	"fmt"
	"strings"

	"github.com/investiq-ai/investiq/engine/domain"
)

// contextHeader introduces the knowledge-base section of the prompt.
const contextHeader = "--- S&P 500 Knowledge Base Results ---"

const blockSep = "\n\n"

// Assemble renders retrieved documents plus caller-supplied live-data
// snippets into one context string of at most maxChars characters.
// Documents appear in relevance order, one entry per ticker (repeat tickers
// are dropped, matching how the advisor prompt is built); snippets follow
// in the order given. Oversized blocks are truncated at a paragraph or
// sentence boundary when one fits the remaining budget. Output is
// deterministic for identical inputs.
func Assemble(results []Result, liveSnippets []string, maxChars int) (string, error) {
	if maxChars <= 0 {
		return "", fmt.Errorf("retrieval: assemble: maxChars must be positive, got %d: %w",
			maxChars, domain.ErrInvalidArgument)
	}

	var b strings.Builder
	full := false

	// add appends block, truncating to fit. Returns false once the
	// budget is exhausted.
	add := func(block string) bool {
		if full || block == "" {
			return !full
		}
		budget := maxChars - b.Len()
		if b.Len() > 0 {
			budget -= len(blockSep)
		}
		if budget <= 0 {
			full = true
			return false
		}
		if len(block) > budget {
			block = truncateAtBoundary(block, budget)
			full = true
			if block == "" {
				return false
			}
		}
		if b.Len() > 0 {
			b.WriteString(blockSep)
		}
		b.WriteString(block)
		return !full
	}

	if len(results) > 0 {
		add(contextHeader)
		seen := make(map[string]struct{})
		for i, r := range results {
			if ticker := r.Doc.Meta(domain.MetaTicker); ticker != "" {
				if _, dup := seen[ticker]; dup {
					continue
				}
				seen[ticker] = struct{}{}
			}
			if !add(fmt.Sprintf("[%d] %s", i+1, r.Doc.Text)) {
				break
			}
		}
	}

	for _, snippet := range liveSnippets {
		if !add(snippet) {
			break
		}
	}

	return b.String(), nil
}

// truncateAtBoundary cuts s to at most budget characters, preferring a
// paragraph break, then a sentence end, over a hard cut.
func truncateAtBoundary(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	cut := s[:budget]
	if i := strings.LastIndex(cut, "\n\n"); i > 0 {
		return cut[:i]
	}
	if i := strings.LastIndex(cut, ". "); i >= 0 {
		return cut[:i+1]
	}
	if strings.HasSuffix(cut, ".") {
		return cut
	}
	if i := strings.LastIndexByte(cut, '.'); i >= 0 {
		return cut[:i+1]
	}
	return cut
}
