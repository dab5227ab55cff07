package indexing

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// PropositionPrompt asks the model to restate a paragraph as one
// proposition per line. %s is replaced with the paragraph.
const PropositionPrompt = "Extract the main propositions or statements from the following paragraph. " +
	"Return each as a separate line.\n\nParagraph:\n%s\n\nPropositions:"

// bulletCutset is trimmed from both ends of every proposition line. It
// includes the runes of a UTF-8 bullet decoded as Windows-1252, which some
// models emit.
const bulletCutset = "-•*â€¢ \t"

// SourceAgentic is the source tag of every proposition unit.
const SourceAgentic = "agentic"

// SplitParagraphs splits text on blank lines ("\n\n") and drops paragraphs
// that are empty after trimming whitespace. Kept paragraphs are returned
// untrimmed.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParsePropositions splits a model completion into propositions, one per
// line, stripping bullets and whitespace and dropping empty lines.
func ParsePropositions(completion string) []string {
	completion = strings.TrimSpace(completion)
	var out []string
	for _, line := range strings.Split(completion, "\n") {
		line = strings.Trim(line, bulletCutset)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ExtractPropositions asks llm for the propositions of paragraph.
func ExtractPropositions(ctx context.Context, llm llms.Model, paragraph string) ([]string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, llm, fmt.Sprintf(PropositionPrompt, paragraph))
	if err != nil {
		ModelCalls.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("extracting propositions: %w", err)
	}
	ModelCalls.WithLabelValues("success").Inc()
	return ParsePropositions(completion), nil
}
