package chatbot

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dokuchat/dokuchat/llm"
	"go.uber.org/zap"
)

// Suggestion parse outcomes, used as metric labels.
const (
	SuggestOutcomeParsed   = "parsed"
	SuggestOutcomeFallback = "fallback"
	SuggestOutcomeDefault  = "default"
	SuggestOutcomeError    = "error"
)

// questionPattern extracts question sentences from free-form model output.
var questionPattern = regexp.MustCompile(`[^.!?]*\?`)

// defaultSuggestions are served when the model output contains no usable
// questions at all.
var defaultSuggestions = []string{
	"Bisa jelaskan lebih detail tentang topik ini?",
	"Apa implikasi dari informasi ini?",
	"Apakah ada contoh kasus yang relevan?",
}

// Suggester produces follow-up question suggestions. Suggestions are best
// effort: a generator failure yields an empty list, never an error to the
// caller.
type Suggester struct {
	generator llm.Generator
	logger    *zap.Logger
}

// NewSuggester creates a suggester over the given generator.
func NewSuggester(generator llm.Generator, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{
		generator: generator,
		logger:    logger.With(zap.String("component", "suggester")),
	}
}

// Suggest asks the generator for follow-up questions grounded in the answer
// context and parses its reply. The second return value tags how the
// suggestions were obtained: parsed, fallback, default, or error.
func (s *Suggester) Suggest(ctx context.Context, query, answerContext string) ([]string, string) {
	prompt := BuildSuggestionPrompt(query, answerContext)
	raw, err := s.generator.Generate(ctx, query, prompt)
	if err != nil {
		s.logger.Warn("suggestion generation failed", zap.Error(err))
		return []string{}, SuggestOutcomeError
	}

	raw = stripCodeFences(raw)
	if list, ok := parseLiteralList(raw); ok {
		return list, SuggestOutcomeParsed
	}

	s.logger.Warn("suggestion output was not a literal list",
		zap.String("raw", truncateRunesWithEllipsis(raw, 120)))

	questions := make([]string, 0, 3)
	for _, m := range questionPattern.FindAllString(raw, -1) {
		q := strings.TrimSpace(m)
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == 3 {
			break
		}
	}
	if len(questions) > 0 {
		return questions, SuggestOutcomeFallback
	}

	return append([]string(nil), defaultSuggestions...), SuggestOutcomeDefault
}

// stripCodeFences removes markdown fences the model sometimes wraps its list in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```python")
	s = strings.TrimPrefix(s, "```json")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// parseLiteralList parses a bracketed list of strings. JSON syntax is tried
// first; single-quoted Python-style lists are scanned by hand since models
// emit both forms.
func parseLiteralList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}

	var viaJSON []string
	if err := json.Unmarshal([]byte(s), &viaJSON); err == nil {
		return viaJSON, true
	}

	return scanQuotedList(s)
}

// scanQuotedList walks a bracketed list accepting single or double quoted
// elements with backslash escapes. Anything other than quoted strings,
// commas, and whitespace between elements fails the parse.
func scanQuotedList(s string) ([]string, bool) {
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return []string{}, true
	}

	var (
		items   []string
		current strings.Builder
		quote   rune
		inStr   bool
		escaped bool
		wantSep bool
	)
	for _, r := range inner {
		switch {
		case inStr:
			if escaped {
				current.WriteRune(r)
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == quote {
				items = append(items, current.String())
				current.Reset()
				inStr = false
				wantSep = true
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			if wantSep {
				return nil, false
			}
			quote = r
			inStr = true
		case r == ',':
			if !wantSep {
				return nil, false
			}
			wantSep = false
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			return nil, false
		}
	}
	if inStr || !wantSep {
		return nil, false
	}
	return items, true
}

func truncateRunesWithEllipsis(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
