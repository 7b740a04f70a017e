package retrieval

import (
	"errors"
	"strings"
	"testing"

	"github.com/investiq-ai/investiq/engine/domain"
)

func doc(id, ticker, text string) Result {
	return Result{
		Doc: domain.Document{
			ID:       id,
			Text:     text,
			Metadata: map[string]string{domain.MetaTicker: ticker},
		},
		Score: 0.9,
	}
}

func TestAssemble_RelevanceOrder(t *testing.T) {
	results := []Result{
		doc("AAPL-profile", "AAPL", "Apple Inc. builds hardware."),
		doc("MSFT-profile", "MSFT", "Microsoft builds software."),
	}
	out, err := Assemble(results, nil, 10_000)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.HasPrefix(out, contextHeader) {
		t.Errorf("missing header: %q", out)
	}
	apple := strings.Index(out, "Apple")
	microsoft := strings.Index(out, "Microsoft")
	if apple < 0 || microsoft < 0 || apple > microsoft {
		t.Errorf("relevance order broken: %q", out)
	}
}

func TestAssemble_DedupesByTicker(t *testing.T) {
	results := []Result{
		doc("AAPL-profile", "AAPL", "Apple profile text."),
		doc("AAPL-sector", "AAPL", "Apple sector text."),
		doc("JPM-profile", "JPM", "JPMorgan profile text."),
	}
	out, err := Assemble(results, nil, 10_000)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(out, "Apple sector text") {
		t.Errorf("duplicate ticker not dropped: %q", out)
	}
	if !strings.Contains(out, "JPMorgan profile text") {
		t.Errorf("missing JPM doc: %q", out)
	}
}

func TestAssemble_BudgetAndBoundary(t *testing.T) {
	long := "First sentence about the company. Second sentence with more detail. " +
		"Third sentence that will not fit in the budget at all."
	results := []Result{doc("AAPL-profile", "AAPL", long)}

	out, err := Assemble(results, nil, 100)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(out) > 100 {
		t.Fatalf("output length %d exceeds budget 100", len(out))
	}
	// The document portion must end on a sentence boundary, not mid-word.
	if out != "" && !strings.HasSuffix(out, ".") && !strings.HasSuffix(out, contextHeader) {
		t.Errorf("not truncated at sentence boundary: %q", out)
	}
}

func TestAssemble_ParagraphBoundaryPreferred(t *testing.T) {
	text := "First paragraph of useful text.\n\nSecond paragraph. It keeps going with detail that overflows."
	results := []Result{doc("AAPL-profile", "AAPL", text)}

	// Budget fits the header plus the first paragraph but not the whole doc.
	out, err := Assemble(results, nil, len(contextHeader)+len(blockSep)+50)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(out, "Second paragraph") {
		t.Errorf("should have cut at the paragraph break: %q", out)
	}
	if !strings.Contains(out, "First paragraph of useful text.") {
		t.Errorf("first paragraph missing: %q", out)
	}
}

func TestAssemble_LiveSnippetsAppended(t *testing.T) {
	results := []Result{doc("AAPL-profile", "AAPL", "Apple profile.")}
	snippets := []string{"Real-Time Data for Apple: price 190.33", "Recent news headline."}

	out, err := Assemble(results, snippets, 10_000)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	docPos := strings.Index(out, "Apple profile.")
	snipPos := strings.Index(out, "Real-Time Data")
	newsPos := strings.Index(out, "Recent news")
	if docPos < 0 || snipPos < 0 || newsPos < 0 || !(docPos < snipPos && snipPos < newsPos) {
		t.Errorf("snippet ordering wrong: %q", out)
	}
}

func TestAssemble_NoResultsNoHeader(t *testing.T) {
	out, err := Assemble(nil, []string{"live snippet only"}, 10_000)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if strings.Contains(out, contextHeader) {
		t.Errorf("header emitted without documents: %q", out)
	}
	if out != "live snippet only" {
		t.Errorf("out = %q", out)
	}
}

func TestAssemble_InvalidBudget(t *testing.T) {
	if _, err := Assemble(nil, nil, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Assemble(nil, nil, -10); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	results := []Result{
		doc("AAPL-profile", "AAPL", "Apple profile."),
		doc("JPM-profile", "JPM", "JPMorgan profile."),
	}
	a, err := Assemble(results, []string{"snippet"}, 200)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	b, err := Assemble(results, []string{"snippet"}, 200)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if a != b {
		t.Errorf("assembly not deterministic:\n%q\n%q", a, b)
	}
}

func TestTruncateAtBoundary(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		budget int
		want   string
	}{
		{"fits", "short.", 100, "short."},
		{"sentence", "One. Two. Three is long.", 12, "One. Two."},
		{"paragraph", "para one\n\npara two tail", 15, "para one"},
		{"hard cut", "nowhitespaceboundaryhere", 10, "nowhitespa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateAtBoundary(tt.in, tt.budget)
			if got != tt.want {
				t.Errorf("truncateAtBoundary(%q, %d) = %q, want %q", tt.in, tt.budget, got, tt.want)
			}
			if len(got) > tt.budget {
				t.Errorf("result exceeds budget")
			}
		})
	}
}
