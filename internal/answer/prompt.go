package answer

import (
	"fmt"
	"strings"

	"github.com/repochat/repochat/internal/chunk"
	"github.com/repochat/repochat/internal/types"
)

// SystemPrompt is the fixed system role sent with every completion request.
const SystemPrompt = "You are a helpful code analyst assistant."

// maxContextResults bounds how many retrieved chunks go into the prompt.
// Retrieval may return more; the extras still appear as cited sources.
const maxContextResults = 3

const promptTemplate = `You are an expert code analyst. Answer the user's question about the codebase using the provided code snippets as context.

Context from codebase:
%s

User Question: %s

Instructions:
1. Answer based primarily on the provided code context
2. If you reference specific code, mention the file name
3. Be concise but comprehensive
4. If the context doesn't contain enough information, say so
5. Provide code examples when relevant

Answer:`

// BuildPrompt assembles the context-augmented prompt from the top-ranked
// results, each formatted as a fenced block labeled with its source path and
// an extension-derived language tag.
func BuildPrompt(query string, results []types.RetrievalResult) string {
	n := len(results)
	if n > maxContextResults {
		n = maxContextResults
	}

	parts := make([]string, 0, n)
	for _, r := range results[:n] {
		parts = append(parts, fmt.Sprintf("File: %s\nCode:\n```%s\n%s\n```",
			r.Chunk.SourcePath,
			chunk.LanguageTag(r.Chunk.Extension),
			r.Chunk.Text))
	}

	return fmt.Sprintf(promptTemplate, strings.Join(parts, "\n\n"), query)
}

// EstimateTokens approximates the token count of a prompt for logging.
// Roughly 1.3 tokens per whitespace-delimited word.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
