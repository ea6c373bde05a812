// Package tools declares the closed set of tools the consultation
// model may invoke.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/glovera/consult/internal/llm"
)

// Kind enumerates the tool variants. The set is closed: dispatch is an
// exhaustive switch over Kind, not a lookup of arbitrary name strings.
type Kind int

const (
	// KindCatalogSearch queries the program catalog with a natural
	// language sub-query.
	KindCatalogSearch Kind = iota
	// KindEndConversation signals the user wants to end the chat.
	KindEndConversation
)

const (
	catalogSearchName   = "search_programs"
	endConversationName = "end_conversation"
)

// CatalogSearchArgs is the typed argument payload of the catalog
// search tool.
type CatalogSearchArgs struct {
	Query string `json:"query"`
}

// ArgumentParseError reports a malformed tool-call payload from the
// model. It is recoverable at the turn level.
type ArgumentParseError struct {
	Tool string
	Err  error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("tool %s: bad arguments: %v", e.Tool, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// IsArgumentParseError reports whether err is (or wraps) an
// ArgumentParseError.
func IsArgumentParseError(err error) bool {
	var ae *ArgumentParseError
	return errors.As(err, &ae)
}

// Registry maps the wire-level tool names the model emits onto the
// closed Kind enumeration. The mapping is fixed at construction.
type Registry struct {
	byName map[string]Kind
	defs   []llm.ToolDefinition
}

// NewRegistry declares the two consultation tools.
func NewRegistry() *Registry {
	defs := []llm.ToolDefinition{
		{
			Name: catalogSearchName,
			Description: "Queries the study-abroad program catalog. The catalog holds university programs " +
				"with their location, pricing, rankings and admission requirements. Send the user's question " +
				"here in natural language whenever they ask about programs, universities, fees, eligibility " +
				"or anything else the catalog could answer.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "The user's question about programs, in natural language.",
					},
				},
				"required":             []string{"query"},
				"additionalProperties": false,
			},
		},
		{
			Name: endConversationName,
			Description: "Call this when the user indicates they are done and want to end the " +
				"consultation. Takes no arguments.",
			InputSchema: map[string]interface{}{
				"type":                 "object",
				"properties":           map[string]interface{}{},
				"additionalProperties": false,
			},
		},
	}

	return &Registry{
		byName: map[string]Kind{
			catalogSearchName:   KindCatalogSearch,
			endConversationName: KindEndConversation,
		},
		defs: defs,
	}
}

// Definitions returns the tool declarations exposed to the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Resolve maps a wire-level tool name to its Kind.
func (r *Registry) Resolve(name string) (Kind, bool) {
	kind, ok := r.byName[name]
	return kind, ok
}

// ParseCatalogSearchArgs validates and decodes the argument payload of
// a catalog search call. Unknown fields and a missing or empty query
// are rejected.
func ParseCatalogSearchArgs(call llm.ToolCall) (CatalogSearchArgs, error) {
	raw := call.RawInput
	if raw == "" {
		data, err := json.Marshal(call.Input)
		if err != nil {
			return CatalogSearchArgs{}, &ArgumentParseError{Tool: call.Name, Err: err}
		}
		raw = string(data)
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()

	var args CatalogSearchArgs
	if err := dec.Decode(&args); err != nil {
		return CatalogSearchArgs{}, &ArgumentParseError{Tool: call.Name, Err: err}
	}
	if args.Query == "" {
		return CatalogSearchArgs{}, &ArgumentParseError{Tool: call.Name, Err: errors.New("query is required")}
	}
	return args, nil
}
