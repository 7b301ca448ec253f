package answer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/types"
)

// NoContextMessage is returned verbatim when retrieval found nothing; no
// completion call is made in that case.
const NoContextMessage = "I couldn't find any relevant code snippets for your query."

// snippetDisplayLimit truncates source snippets for display.
const snippetDisplayLimit = 500

// Composer builds the augmented prompt and packages the completion output
// with cited sources.
type Composer struct {
	completer Completer
	logger    zerolog.Logger
}

// NewComposer creates a Composer over the given completion client.
func NewComposer(completer Completer, logger zerolog.Logger) *Composer {
	return &Composer{completer: completer, logger: logger}
}

// Compose answers a query from its retrieval results. Empty results yield
// the fixed no-context answer without touching the completion service, and a
// completion failure degrades to an explanatory answer so the session
// continues.
func (c *Composer) Compose(ctx context.Context, query string, results []types.RetrievalResult) types.Answer {
	if len(results) == 0 {
		return types.Answer{
			Text:        NoContextMessage,
			Sources:     []types.Source{},
			ContextUsed: false,
		}
	}

	prompt := BuildPrompt(query, results)
	c.logger.Debug().Int("results", len(results)).
		Int("approx_tokens", EstimateTokens(prompt)).Msg("sending completion request")

	text, err := c.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		c.logger.Error().Err(err).Msg("completion failed")
		return types.Answer{
			Text:        fmt.Sprintf("Sorry, I encountered an error: %v", err),
			Sources:     []types.Source{},
			ContextUsed: false,
		}
	}

	// Sources cover everything retrieved, not only the chunks that fit in
	// the prompt, so callers can show near misses too.
	sources := make([]types.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, types.Source{
			Path:     r.Chunk.SourcePath,
			Snippet:  truncate(r.Chunk.Text, snippetDisplayLimit),
			Distance: r.Distance,
		})
	}

	return types.Answer{
		Text:        text,
		Sources:     sources,
		ContextUsed: true,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
