// Package profile holds the externally sourced user profile used to
// personalize prompts and catalog queries.
package profile

import (
	"sort"
	"strings"
)

// Profile is a read-only mapping of profile attributes (budget range,
// prior education, preferred intake, and so on).
type Profile map[string]string

// BudgetCeiling returns the upper bound of the profile's budget_range
// attribute ("20000-50000" → "50000"). The lower bound is never used:
// the business rule is to show anything at or under budget.
func (p Profile) BudgetCeiling() (string, bool) {
	raw, ok := p["budget_range"]
	if !ok || raw == "" {
		return "", false
	}
	parts := strings.Split(raw, "-")
	ceiling := strings.TrimSpace(parts[len(parts)-1])
	if ceiling == "" {
		return "", false
	}
	return ceiling, true
}

// ForQuery returns a copy suitable for embedding in a translator
// prompt: budget_range is replaced by max_budget (its upper bound).
func (p Profile) ForQuery() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		if k == "budget_range" {
			continue
		}
		out[k] = v
	}
	if ceiling, ok := p.BudgetCeiling(); ok {
		out["max_budget"] = ceiling
	}
	return out
}

// Serialize renders the profile as stable key: value lines for prompt
// embedding.
func (p Profile) Serialize() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(p[k])
		b.WriteString("\n")
	}
	return b.String()
}
