// Package translator turns natural-language catalog questions into
// structured filters.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glovera/consult/internal/catalog"
	"github.com/glovera/consult/internal/llm"
	"github.com/glovera/consult/internal/profile"
)

// TranslationError reports that the model produced no extractable or
// parseable filter. It is recoverable; a failed translation never
// degrades into an unfiltered query.
type TranslationError struct {
	Reason string
	Err    error
}

func (e *TranslationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("translate query: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("translate query: %s", e.Reason)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// IsTranslationError reports whether err is (or wraps) a
// TranslationError.
func IsTranslationError(err error) bool {
	var te *TranslationError
	return errors.As(err, &te)
}

const (
	openMarker  = "<query>"
	closeMarker = "</query>"

	maxOutputTokens = 2000
)

const workedExamples = `Examples of queries:

1. Tell me about some good universities in the USA that teach sociology =>
{
    "$and": [
        { "location": { "$regex": "united states|usa|us", "$options": "i" } },
        { "program_name": { "$regex": "sociology", "$options": "i" } }
    ]
}

2. Tell me good universities in the USA for MBA =>
{
    "$and": [
        { "location": { "$regex": "united states|usa|us", "$options": "i" } },
        { "program_name": { "$regex": "business|administration|mba", "$options": "i" } }
    ]
}

3. Recommend computer science programs in the USA =>
{
    "$and": [
        { "location": { "$regex": "united states|usa|us", "$options": "i" } },
        { "program_name": { "$regex": "computer", "$options": "i" } }
    ]
}

Focus on creating flexible queries that can match relevant information even with variations in naming or formatting.`

// Translator produces catalog filters from free-text questions via a
// single deterministic model completion.
type Translator struct {
	client llm.Client
	model  string
}

// New creates a translator using the given model.
func New(client llm.Client, model string) *Translator {
	return &Translator{client: client, model: model}
}

// Translate builds the translation prompt, requests one completion at
// temperature zero, and parses the filter from between the query
// markers.
func (t *Translator) Translate(ctx context.Context, query string, prof profile.Profile) (*catalog.Filter, error) {
	prompt := t.buildPrompt(query, prof)

	temperature := 0.0
	resp, err := t.client.Chat(ctx, llm.ChatRequest{
		Model: t.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   maxOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, &TranslationError{Reason: "model call failed", Err: err}
	}

	text, err := extractQuery(resp.Content)
	if err != nil {
		return nil, err
	}

	filter, err := catalog.ParseFilter(text)
	if err != nil {
		return nil, &TranslationError{Reason: "extracted text is not a valid filter", Err: err}
	}
	return filter, nil
}

func (t *Translator) buildPrompt(query string, prof profile.Profile) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI agent/assistant.\n")
	b.WriteString("You will be provided with a natural language query and you have to generate a database filter ")
	b.WriteString("that is relevant to the natural language one, use the examples below to learn.\n")
	b.WriteString(workedExamples)
	b.WriteString("\nHere's the schema of the database:\n<schema>\n")
	b.WriteString(catalog.FieldSchema)
	b.WriteString("\n<schema/>\n")
	b.WriteString("Here's the user's natural language query: <natural_language_query>")
	b.WriteString(query)
	b.WriteString("</natural_language_query>\n")
	b.WriteString("Return your query within the following tags <query></query>\n")
	b.WriteString("Important instructions:\n")
	b.WriteString("1. All programs are based in the US so don't ever filter by country.\n")
	b.WriteString("2. Don't ever add comments in the generated query.\n")
	b.WriteString("3. Use all possible keywords or phrases for string match, for example: ")
	b.WriteString("keywords associated with masters in program_name are ms | masters etc.\n")
	b.WriteString("4. If you're filtering by budget, don't add a lower bound, just make sure ")
	b.WriteString("that you're finding programs below max budget.\n")

	if len(prof) > 0 {
		b.WriteString("Here's some info about the user as well to help you augment your response in a better way\n")
		b.WriteString("<user_info>\n")
		b.WriteString(prof.ForQuery().Serialize())
		b.WriteString("</user_info>\n")
	}

	return b.String()
}

// extractQuery pulls the filter text from between the query markers.
func extractQuery(content string) (string, error) {
	start := strings.Index(content, openMarker)
	if start < 0 {
		return "", &TranslationError{Reason: "response has no " + openMarker + " marker"}
	}
	rest := content[start+len(openMarker):]
	end := strings.Index(rest, closeMarker)
	if end < 0 {
		return "", &TranslationError{Reason: "response has no " + closeMarker + " marker"}
	}
	text := strings.TrimSpace(rest[:end])
	if text == "" {
		return "", &TranslationError{Reason: "markers enclose no filter"}
	}
	return text, nil
}
